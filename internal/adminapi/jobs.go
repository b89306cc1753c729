package adminapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/stylehub/stylehub/internal/app"
	"github.com/stylehub/stylehub/internal/webserver"
)

func registerJobRoutes() {
	webserver.ApiGET("/admin/jobs", listJobs, webserver.RequireAdmin)
	webserver.ApiPOST("/admin/jobs/:name/run", runJob, webserver.RequireAdmin)
}

func listJobs(c echo.Context) error {
	return ok(c, webserver.GetAppContext(c).Jobs())
}

// runJob triggers a maintenance job immediately
func runJob(c echo.Context) error {
	name := c.Param("name")
	err := webserver.GetAppContext(c).RunJobNow(name)
	if errors.Is(err, app.ErrUnknownJob) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Unknown job: "+name, nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "RUN_FAILED", "Failed to run job", storageDetail(c, err))
	}
	return c.NoContent(http.StatusNoContent)
}
