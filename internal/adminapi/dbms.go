package adminapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stylehub/stylehub/internal/domain"
	"github.com/stylehub/stylehub/internal/webserver"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// DBMSTableInfo is one application table and its row count
type DBMSTableInfo struct {
	Name     string `json:"name"`
	RowCount int64  `json:"row_count"`
}

// DBMSServerInfo represents database server information
type DBMSServerInfo struct {
	DatabaseType    string `json:"database_type"`
	DatabaseVersion string `json:"database_version"`
	ServerTime      string `json:"server_time"`
	DatabaseName    string `json:"database_name"`
	DatabaseSize    string `json:"database_size"`
	TableCount      int    `json:"table_count"`
	Encoding        string `json:"encoding,omitempty"`
}

// registerDbmsRoutes registers the read only database overview routes
func registerDbmsRoutes() {
	webserver.ApiGET("/admin/dbms/tables", dbmsListTables, webserver.RequireAdmin)
	webserver.ApiGET("/admin/dbms/serverinfo", dbmsGetServerInfo, webserver.RequireAdmin)
}

// dbmsListTables returns the row count of every application table
func dbmsListTables(c echo.Context) error {
	db := GetDB(c)
	tables := make([]DBMSTableInfo, 0, len(domain.Tables))
	for _, model := range domain.Tables {
		var count int64
		if err := db.Model(model).Count(&count).Error; err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to count rows", storageDetail(c, err))
		}
		tables = append(tables, DBMSTableInfo{Name: tableName(db, model), RowCount: count})
	}
	return ok(c, tables)
}

func tableName(db *gorm.DB, model interface{}) string {
	if t, ok := model.(schema.Tabler); ok {
		return t.TableName()
	}
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return fmt.Sprintf("%T", model)
	}
	return stmt.Schema.Table
}

// dbmsGetServerInfo reports the database engine, version and size
func dbmsGetServerInfo(c echo.Context) error {
	db := GetDB(c)
	dbType := db.Dialector.Name()

	info := DBMSServerInfo{
		DatabaseType: dbType,
		ServerTime:   time.Now().Format("2006-01-02 15:04:05"),
		TableCount:   len(domain.Tables),
	}

	switch dbType {
	case "postgres":
		db.Raw("SELECT version()").Scan(&info.DatabaseVersion)
		db.Raw("SELECT current_database()").Scan(&info.DatabaseName)
		db.Raw("SELECT pg_size_pretty(pg_database_size(current_database()))").Scan(&info.DatabaseSize)
		db.Raw("SELECT pg_encoding_to_char(encoding) FROM pg_database WHERE datname = current_database()").Scan(&info.Encoding)

	case "sqlite":
		var version string
		db.Raw("SELECT sqlite_version()").Scan(&version)
		info.DatabaseVersion = "SQLite " + version
		info.DatabaseName = "SQLite Database"

		var pageCount, pageSize int64
		db.Raw("PRAGMA page_count").Scan(&pageCount)
		db.Raw("PRAGMA page_size").Scan(&pageSize)
		info.DatabaseSize = formatBytes(pageCount * pageSize)
		db.Raw("PRAGMA encoding").Scan(&info.Encoding)
	}

	return ok(c, info)
}

func formatBytes(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.2f KB", float64(n)/1024)
	case n < 1024*1024*1024:
		return fmt.Sprintf("%.2f MB", float64(n)/(1024*1024))
	default:
		return fmt.Sprintf("%.2f GB", float64(n)/(1024*1024*1024))
	}
}
