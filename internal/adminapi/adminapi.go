// Package adminapi holds the JSON API and admin page handlers.
package adminapi

// Init registers every API route on the web server. webserver.Init must run first.
func Init() {
	registerAuthRoutes()
	registerProductRoutes()
	registerContactRoutes()
	registerDashboardRoutes()
	registerJobRoutes()
	registerDbmsRoutes()
}
