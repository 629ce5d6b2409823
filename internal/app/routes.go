package app

import (
	"net/http"

	"github.com/gorilla/mux"
)

func newRouter(deps *Dependencies) *mux.Router {
	router := mux.NewRouter()
	router.Use(loggingMiddleware)

	// Login is the only route outside the auth middleware.
	router.HandleFunc("/api/auth/login", deps.AuthHandler.Login).Methods(http.MethodPost)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware(deps.TokenIssuer))

	api.HandleFunc("/auth/me", deps.AuthHandler.Me).Methods(http.MethodGet)

	api.HandleFunc("/users", deps.UserHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/users", deps.UserHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/users/me", deps.UserHandler.Current).Methods(http.MethodGet)
	api.HandleFunc("/users/{userId}", deps.UserHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/users/{userId}", deps.UserHandler.Update).Methods(http.MethodPut)
	api.HandleFunc("/users/{userId}", deps.UserHandler.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/departments", deps.DepartmentHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/departments", deps.DepartmentHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/departments/{departmentId}", deps.DepartmentHandler.Update).Methods(http.MethodPut)
	api.HandleFunc("/departments/{departmentId}", deps.DepartmentHandler.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/projects", deps.ProjectHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/projects", deps.ProjectHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/projects/{projectId}", deps.ProjectHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/projects/{projectId}", deps.ProjectHandler.Update).Methods(http.MethodPut)
	api.HandleFunc("/projects/{projectId}", deps.ProjectHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/projects/{projectId}/activities", deps.ActivityHandler.ListForProject).Methods(http.MethodGet)

	api.HandleFunc("/activities", deps.ActivityHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/activities/{activityId}", deps.ActivityHandler.Update).Methods(http.MethodPut)
	api.HandleFunc("/activities/{activityId}", deps.ActivityHandler.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/assignments", deps.AssignmentHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/assignments/user/{userId}", deps.AssignmentHandler.ListForUser).Methods(http.MethodGet)
	api.HandleFunc("/assignments/{assignmentId}/end", deps.AssignmentHandler.End).Methods(http.MethodPost)

	api.HandleFunc("/timesheets", deps.TimesheetHandler.CreateEntry).Methods(http.MethodPost)
	api.HandleFunc("/timesheets", deps.TimesheetHandler.ListEntries).Methods(http.MethodGet)
	api.HandleFunc("/timesheets/week", deps.TimesheetHandler.GetWeek).Methods(http.MethodGet)
	api.HandleFunc("/timesheets/week/submit", deps.TimesheetHandler.SubmitWeek).Methods(http.MethodPost)
	api.HandleFunc("/timesheets/week/approve", deps.TimesheetHandler.ApproveWeek).Methods(http.MethodPost)
	api.HandleFunc("/timesheets/week/reject", deps.TimesheetHandler.RejectWeek).Methods(http.MethodPost)
	api.HandleFunc("/timesheets/pending-approvals", deps.TimesheetHandler.PendingApprovals).Methods(http.MethodGet)
	api.HandleFunc("/timesheets/{entryId}", deps.TimesheetHandler.UpdateEntry).Methods(http.MethodPut)
	api.HandleFunc("/timesheets/{entryId}", deps.TimesheetHandler.DeleteEntry).Methods(http.MethodDelete)

	api.HandleFunc("/reports/individual", deps.ReportHandler.Individual).Methods(http.MethodGet)
	api.HandleFunc("/reports/team", deps.ReportHandler.Team).Methods(http.MethodGet)
	api.HandleFunc("/reports/project/{projectId}", deps.ReportHandler.Project).Methods(http.MethodGet)

	api.HandleFunc("/dashboard/personal", deps.DashboardHandler.Personal).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/team", deps.DashboardHandler.Team).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/executive", deps.DashboardHandler.Executive).Methods(http.MethodGet)

	api.HandleFunc("/templates", deps.TemplateHandler.Snapshot).Methods(http.MethodPost)
	api.HandleFunc("/templates", deps.TemplateHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/templates/{templateId}/apply", deps.TemplateHandler.Apply).Methods(http.MethodPost)
	api.HandleFunc("/templates/{templateId}", deps.TemplateHandler.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/audit", deps.AuditHandler.List).Methods(http.MethodGet)

	return router
}
