package app

import (
	"context"
	"database/sql"

	"github.com/apontei/apontei/internal/config"
	"github.com/apontei/apontei/internal/utils"
	"github.com/apontei/apontei/pkg/activity"
	"github.com/apontei/apontei/pkg/assignment"
	"github.com/apontei/apontei/pkg/audit"
	"github.com/apontei/apontei/pkg/auth"
	"github.com/apontei/apontei/pkg/dashboard"
	"github.com/apontei/apontei/pkg/department"
	"github.com/apontei/apontei/pkg/project"
	"github.com/apontei/apontei/pkg/report"
	"github.com/apontei/apontei/pkg/template"
	"github.com/apontei/apontei/pkg/timesheet"
	"github.com/apontei/apontei/pkg/user"
)

// Dependencies holds every wired handler plus the pieces middleware needs.
type Dependencies struct {
	TokenIssuer *TokenDeps

	AuthHandler       *auth.Handler
	UserHandler       *user.Handler
	DepartmentHandler *department.Handler
	ProjectHandler    *project.Handler
	ActivityHandler   *activity.Handler
	AssignmentHandler *assignment.Handler
	TimesheetHandler  *timesheet.Handler
	ReportHandler     *report.Handler
	DashboardHandler  *dashboard.Handler
	TemplateHandler   *template.Handler
	AuditHandler      *audit.Handler
}

// TokenDeps is what the auth middleware needs to resolve a request's user.
type TokenDeps struct {
	Issuer *auth.TokenIssuer
	Users  user.Repo
}

func BuildDependencies(db *sql.DB, cfg config.Application) (*Dependencies, error) {
	clock := utils.SystemClock{}
	firstDay, err := cfg.Timesheet.WeekStart()
	if err != nil {
		return nil, err
	}

	userRepo := user.NewRepo(db)
	departmentRepo := department.NewRepository(db)
	projectRepo := project.NewRepository(db)
	activityRepo := activity.NewRepository(db)
	assignmentRepo := assignment.NewRepository(db)
	timesheetRepo := timesheet.NewRepository(db)
	reportRepo := report.NewRepository(db)
	dashboardRepo := dashboard.NewRepository(db)
	templateRepo := template.NewRepository(db)
	auditRepo := audit.NewRepository(db)

	recorder := audit.NewRecorder(auditRepo, clock)
	gate := assignment.NewGate(assignmentRepo, activityRepo)

	issuer := auth.NewTokenIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL())
	authService := auth.NewService(userRepo, issuer, clock)
	userService := user.NewService(userRepo)
	timesheetService := timesheet.NewService(timesheetRepo, gate, userRepo, recorder, clock, firstDay)
	workflow := timesheet.NewWorkflow(timesheetRepo, userRepo, recorder, clock, firstDay)
	reportService := report.NewService(reportRepo, userRepo)
	dashboardService := dashboard.NewService(dashboardRepo, timesheetRepo, clock, firstDay)
	templateService := template.NewService(templateRepo, timesheetRepo, timesheetService, clock, firstDay)

	checkProject := func(ctx context.Context, projectID string) error {
		_, err := projectRepo.FindByID(ctx, projectID)
		return err
	}

	return &Dependencies{
		TokenIssuer: &TokenDeps{Issuer: issuer, Users: userRepo},

		AuthHandler:       auth.NewHandler(authService),
		UserHandler:       user.NewHandler(userService),
		DepartmentHandler: department.NewHandler(departmentRepo),
		ProjectHandler:    project.NewHandler(projectRepo),
		ActivityHandler:   activity.NewHandler(activityRepo, checkProject),
		AssignmentHandler: assignment.NewHandler(assignmentRepo),
		TimesheetHandler:  timesheet.NewHandler(timesheetService, workflow),
		ReportHandler:     report.NewHandler(reportService),
		DashboardHandler:  dashboard.NewHandler(dashboardService),
		TemplateHandler:   template.NewHandler(templateService),
		AuditHandler:      audit.NewHandler(auditRepo),
	}, nil
}
