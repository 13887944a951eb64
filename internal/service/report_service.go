package service

import (
	"context"
	"time"

	"spinach-be/internal/constant"
	"spinach-be/internal/dto"
	"spinach-be/internal/entity"
	"spinach-be/internal/pkg/logger"
	"spinach-be/internal/pkg/serverutils"
	"spinach-be/internal/repository/specification"
	"spinach-be/internal/repository/unitofwork"
	"spinach-be/pkg/llm"
	"spinach-be/pkg/utils"

	"github.com/google/uuid"
)

const reportDateLayout = "2006-01-02"

type ReportFilter struct {
	ReportUserId *uuid.UUID
	ReportDate   *string // YYYY-MM-DD
}

type IReportService interface {
	CreateUser(ctx context.Context, request *dto.CreateReportUserRequest) (*dto.ReportUserResponse, error)
	GetAllUsers(ctx context.Context) ([]*dto.ReportUserResponse, error)
	UpdateUser(ctx context.Context, request *dto.UpdateReportUserRequest) (*dto.ReportUserResponse, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	// UpsertReport stores the day's report for a user. Re-submitting the same
	// (user, date) pair replaces the conversation instead of adding a row.
	UpsertReport(ctx context.Context, request *dto.UpsertReportRequest) (*dto.ReportResponse, error)
	GetReport(ctx context.Context, id uuid.UUID) (*dto.ReportResponse, error)
	ListReports(ctx context.Context, filter ReportFilter) ([]*dto.ReportResponse, error)
	DeleteReport(ctx context.Context, id uuid.UUID) error
	// ExtractSummary asks the LLM to condense the report conversation into the
	// structured summary fields and stores the result on the report.
	ExtractSummary(ctx context.Context, id uuid.UUID) (*dto.ReportResponse, error)
}

type reportService struct {
	uowFactory  unitofwork.RepositoryFactory
	llmProvider llm.LLMProvider
	log         logger.ILogger
}

func NewReportService(uowFactory unitofwork.RepositoryFactory, llmProvider llm.LLMProvider, log logger.ILogger) IReportService {
	return &reportService{
		uowFactory:  uowFactory,
		llmProvider: llmProvider,
		log:         log,
	}
}

func (rs *reportService) CreateUser(ctx context.Context, request *dto.CreateReportUserRequest) (*dto.ReportUserResponse, error) {
	uow := rs.uowFactory.NewUnitOfWork(ctx)

	user := entity.ReportUser{
		Id:         uuid.New(),
		Name:       request.Name,
		Department: request.Department,
		CreatedAt:  time.Now(),
	}
	if err := uow.ReportUserRepository().Create(ctx, &user); err != nil {
		return nil, err
	}

	return reportUserToResponse(&user), nil
}

func (rs *reportService) GetAllUsers(ctx context.Context) ([]*dto.ReportUserResponse, error) {
	uow := rs.uowFactory.NewUnitOfWork(ctx)

	users, err := uow.ReportUserRepository().FindAll(ctx,
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.ReportUserResponse, 0, len(users))
	for _, user := range users {
		response = append(response, reportUserToResponse(user))
	}
	return response, nil
}

func (rs *reportService) UpdateUser(ctx context.Context, request *dto.UpdateReportUserRequest) (*dto.ReportUserResponse, error) {
	uow := rs.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.ReportUserRepository().FindOne(ctx, specification.ByID{ID: request.Id})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, serverutils.NewNotFoundError("report user not found")
	}

	user.Name = request.Name
	user.Department = request.Department
	if err := uow.ReportUserRepository().Update(ctx, user); err != nil {
		return nil, err
	}

	return reportUserToResponse(user), nil
}

func (rs *reportService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	uow := rs.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.ReportUserRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if user == nil {
		return serverutils.NewNotFoundError("report user not found")
	}

	return uow.ReportUserRepository().Delete(ctx, id)
}

func (rs *reportService) UpsertReport(ctx context.Context, request *dto.UpsertReportRequest) (*dto.ReportResponse, error) {
	reportDate, err := time.Parse(reportDateLayout, request.ReportDate)
	if err != nil {
		return nil, serverutils.NewBadRequestError("report_date must be YYYY-MM-DD")
	}

	uow := rs.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.ReportUserRepository().FindOne(ctx, specification.ByID{ID: request.ReportUserId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, serverutils.NewNotFoundError("report user not found")
	}

	messages := make([]entity.ReportMessage, 0, len(request.Messages))
	for _, msg := range request.Messages {
		messages = append(messages, entity.ReportMessage{Role: msg.Role, Content: msg.Content})
	}

	report := entity.DailyReport{
		Id:           uuid.New(),
		ReportUserId: request.ReportUserId,
		ReportDate:   reportDate,
		Messages:     messages,
		CreatedAt:    time.Now(),
	}
	if err := uow.DailyReportRepository().Upsert(ctx, &report); err != nil {
		return nil, err
	}

	return reportToResponse(&report), nil
}

func (rs *reportService) GetReport(ctx context.Context, id uuid.UUID) (*dto.ReportResponse, error) {
	uow := rs.uowFactory.NewUnitOfWork(ctx)

	report, err := uow.DailyReportRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, serverutils.NewNotFoundError("report not found")
	}

	return reportToResponse(report), nil
}

func (rs *reportService) ListReports(ctx context.Context, filter ReportFilter) ([]*dto.ReportResponse, error) {
	specs := []specification.Specification{
		specification.OrderBy{Field: "report_date", Desc: true},
	}
	if filter.ReportUserId != nil {
		specs = append(specs, specification.ByReportUserID{ReportUserID: *filter.ReportUserId})
	}
	if filter.ReportDate != nil {
		date, err := time.Parse(reportDateLayout, *filter.ReportDate)
		if err != nil {
			return nil, serverutils.NewBadRequestError("date must be YYYY-MM-DD")
		}
		specs = append(specs, specification.ByReportDate{Date: date})
	}

	uow := rs.uowFactory.NewUnitOfWork(ctx)
	reports, err := uow.DailyReportRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.ReportResponse, 0, len(reports))
	for _, report := range reports {
		response = append(response, reportToResponse(report))
	}
	return response, nil
}

func (rs *reportService) DeleteReport(ctx context.Context, id uuid.UUID) error {
	uow := rs.uowFactory.NewUnitOfWork(ctx)

	report, err := uow.DailyReportRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if report == nil {
		return serverutils.NewNotFoundError("report not found")
	}

	return uow.DailyReportRepository().Delete(ctx, id)
}

func (rs *reportService) ExtractSummary(ctx context.Context, id uuid.UUID) (*dto.ReportResponse, error) {
	uow := rs.uowFactory.NewUnitOfWork(ctx)

	report, err := uow.DailyReportRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, serverutils.NewNotFoundError("report not found")
	}

	history := make([]llm.Message, 0, len(report.Messages)+1)
	for _, msg := range report.Messages {
		history = append(history, llm.Message{Role: msg.Role, Content: msg.Content})
	}
	history = append(history, llm.Message{
		Role:    constant.ChatMessageRoleUser,
		Content: constant.ReportExtractionPrompt,
	})

	reply, err := rs.llmProvider.Chat(ctx, history)
	if err != nil {
		rs.log.Error("report_service", "summary extraction failed", map[string]interface{}{
			"report_id": id,
			"error":     err.Error(),
		})
		return nil, serverutils.NewBadGatewayError("llm request failed: " + err.Error())
	}

	summary, err := utils.ExtractJSONBlock(reply)
	if err != nil {
		return nil, serverutils.NewBadGatewayError("could not parse summary from llm response: " + err.Error())
	}

	report.Summary = summary
	if err := uow.DailyReportRepository().Update(ctx, report); err != nil {
		return nil, err
	}

	return reportToResponse(report), nil
}

func reportUserToResponse(user *entity.ReportUser) *dto.ReportUserResponse {
	return &dto.ReportUserResponse{
		Id:         user.Id,
		Name:       user.Name,
		Department: user.Department,
		CreatedAt:  user.CreatedAt,
	}
}

func reportToResponse(report *entity.DailyReport) *dto.ReportResponse {
	messages := make([]dto.ReportMessageDTO, 0, len(report.Messages))
	for _, msg := range report.Messages {
		messages = append(messages, dto.ReportMessageDTO{Role: msg.Role, Content: msg.Content})
	}

	return &dto.ReportResponse{
		Id:           report.Id,
		ReportUserId: report.ReportUserId,
		ReportDate:   report.ReportDate.Format(reportDateLayout),
		Messages:     messages,
		Summary:      report.Summary,
		CreatedAt:    report.CreatedAt,
		UpdatedAt:    report.UpdatedAt,
	}
}
