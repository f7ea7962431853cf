package echoapi

import (
	"bytes"
	"fmt"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/fdpfeedback/core"
	"github.com/trezcool/fdpfeedback/core/feedback"
	"github.com/trezcool/fdpfeedback/services/charts"
	"github.com/trezcool/fdpfeedback/services/export"
	"github.com/trezcool/fdpfeedback/services/metrics"
)

var nowFunc = time.Now // mockable

type feedbackHandlers struct {
	svc        *feedback.Service
	mailSvc    core.EmailService
	conf       *core.Config
	logger     core.Logger
	translator ut.Translator
	gate       *exportGate
}

func registerWebRoutes(app *echo.Echo, h feedbackHandlers) {
	app.GET("/", h.showForm)
	app.POST("/", h.submitForm)
	app.GET("/dashboard", h.dashboard)
	app.GET("/charts/means.png", h.meansChart)
	app.GET("/charts/q/:file", h.questionChart)
	app.POST("/export", h.exportForm)
}

func registerFeedbackAPI(g *echo.Group, h feedbackHandlers, jwt echo.MiddlewareFunc) {
	g.POST("/responses", h.create)
	g.GET("/summary", h.summary)
	g.GET("/catalog", h.catalog)

	eg := g.Group("/export")
	eg.POST("/token", h.exportToken)

	// authed endpoints
	ag := eg.Group("", jwt, exportScopeMiddleware)
	ag.GET("/responses.csv", h.exportCSV)
	ag.GET("/bundle.zip", h.exportBundle)
	ag.POST("/mail", h.mailBundle)
}

// observeSubmission counts the outcome of a submission attempt.
func observeSubmission(err error) {
	switch errors.Cause(err).(type) {
	case nil:
		metrics.ObserveSubmission(metrics.OutcomeSuccess)
	case validator.ValidationErrors, *core.ValidationError:
		metrics.ObserveSubmission(metrics.OutcomeInvalid)
	default:
		metrics.ObserveSubmission(metrics.OutcomeError)
	}
}

// Pages

type (
	basePage struct {
		AppName  string
		Title    string
		Subtitle string
	}

	formField struct {
		Name  string
		Label string
		Type  string
		Value string
		Error string
	}

	formQuestion struct {
		Number int
		Text   string
		Rating int
		Error  string
	}

	submission struct {
		Name      string
		Timestamp string
	}

	formPageData struct {
		basePage
		Fields    []formField
		Questions []formQuestion
		ScaleHint string
		MinRating int
		MaxRating int
		Errors    map[string]string
		Success   *submission
		Failure   string
	}

	dashboardRow struct {
		Number   int
		Question string
		Mean     float64
		Counts   []int
	}

	dashboardPageData struct {
		basePage
		Count       int
		Rows        []dashboardRow
		ScaleLabels []string
		Empty       bool
		Failure     string
		ExportError string
	}
)

func (h feedbackHandlers) basePage(title string) basePage {
	return basePage{AppName: h.conf.AppName, Title: title, Subtitle: h.svc.Catalog().Subtitle()}
}

func (h feedbackHandlers) scaleLabels() []string {
	catalog := h.svc.Catalog()
	labels := make([]string, 0, feedback.MaxRating-feedback.MinRating+1)
	for r := feedback.MinRating; r <= feedback.MaxRating; r++ {
		labels = append(labels, fmt.Sprintf("%d %s", r, catalog.ScaleLabel(r)))
	}
	return labels
}

func (h feedbackHandlers) newFormPage(nr feedback.NewResponse, fldErrs map[string]string) formPageData {
	catalog := h.svc.Catalog()
	if len(nr.Ratings) != feedback.NumQuestions {
		nr.Ratings = feedback.DefaultRatings()
	}

	data := formPageData{
		basePage: h.basePage(catalog.Title()),
		Fields: []formField{
			{Name: "name", Label: "Name", Type: "text", Value: nr.Name, Error: fldErrs["name"]},
			{Name: "department", Label: "Department", Type: "text", Value: nr.Department, Error: fldErrs["department"]},
			{Name: "mobile", Label: "Mobile", Type: "tel", Value: nr.Mobile, Error: fldErrs["mobile"]},
			{Name: "email", Label: "Email", Type: "email", Value: nr.Email, Error: fldErrs["email"]},
		},
		ScaleHint: fmt.Sprintf("%d = %s, %d = %s",
			feedback.MinRating, catalog.ScaleLabel(feedback.MinRating),
			feedback.MaxRating, catalog.ScaleLabel(feedback.MaxRating)),
		MinRating: feedback.MinRating,
		MaxRating: feedback.MaxRating,
		Errors:    fldErrs,
	}
	for i, q := range catalog.Questions() {
		rating := nr.Ratings[i]
		if rating < feedback.MinRating || rating > feedback.MaxRating {
			rating = feedback.DefaultRating
		}
		data.Questions = append(data.Questions, formQuestion{
			Number: i + 1,
			Text:   q,
			Rating: rating,
			Error:  fldErrs[fmt.Sprintf("ratings[%d]", i)],
		})
	}
	return data
}

func (h feedbackHandlers) showForm(ctx echo.Context) error {
	return ctx.Render(http.StatusOK, formPage, h.newFormPage(feedback.NewResponse{}, nil))
}

func (h feedbackHandlers) submitForm(ctx echo.Context) error {
	nr, err := bindForm(ctx)
	if err != nil {
		return err
	}

	r, err := h.svc.Submit(ctx.Request().Context(), nr)
	observeSubmission(err)
	if err != nil {
		switch origErr := errors.Cause(err).(type) {
		case validator.ValidationErrors:
			data := h.newFormPage(nr, core.TranslateErrors(origErr, h.translator))
			return ctx.Render(http.StatusBadRequest, formPage, data)
		case *core.StoreError:
			h.logger.Error(fmt.Sprintf("submitting feedback: %v", err), err, core.Person{Name: nr.Name, Email: nr.Email})
			data := h.newFormPage(nr, nil)
			data.Failure, _ = failureMessage(err)
			return ctx.Render(http.StatusServiceUnavailable, formPage, data)
		}
		return err
	}

	data := h.newFormPage(feedback.NewResponse{}, nil)
	data.Success = &submission{Name: r.Name, Timestamp: r.FormattedTimestamp()}
	return ctx.Render(http.StatusOK, formPage, data)
}

func (h feedbackHandlers) newDashboardPage(ctx echo.Context) (int, dashboardPageData) {
	catalog := h.svc.Catalog()
	data := dashboardPageData{
		basePage:    h.basePage("Feedback dashboard"),
		ScaleLabels: h.scaleLabels(),
	}

	s, err := h.svc.Summary(ctx.Request().Context())
	if err != nil {
		if errors.Is(err, feedback.ErrNoData) {
			data.Empty = true
			return http.StatusOK, data
		}
		h.logger.Error(fmt.Sprintf("loading dashboard: %v", err), err)
		msg, ok := failureMessage(err)
		if !ok {
			msg = http.StatusText(http.StatusInternalServerError)
		}
		data.Failure = msg
		if core.IsStoreError(err, core.Unreadable) {
			return http.StatusServiceUnavailable, data
		}
		return http.StatusInternalServerError, data
	}

	data.Count = s.Count
	for _, q := range s.Questions {
		row := dashboardRow{Number: q.Number, Question: catalog.Question(q.Number), Mean: q.Mean}
		for r := feedback.MinRating; r <= feedback.MaxRating; r++ {
			row.Counts = append(row.Counts, q.Histogram.Count(r))
		}
		data.Rows = append(data.Rows, row)
	}
	return http.StatusOK, data
}

func (h feedbackHandlers) dashboard(ctx echo.Context) error {
	code, data := h.newDashboardPage(ctx)
	return ctx.Render(code, dashboardPage, data)
}

func (h feedbackHandlers) meansChart(ctx echo.Context) error {
	s, err := h.svc.Summary(ctx.Request().Context())
	if err != nil {
		return err
	}
	png, err := charts.RenderMeans(s)
	if err != nil {
		return errors.Wrap(err, "rendering means chart")
	}
	return ctx.Blob(http.StatusOK, "image/png", png)
}

func (h feedbackHandlers) questionChart(ctx echo.Context) error {
	file := ctx.Param("file")
	if !strings.HasSuffix(file, ".png") {
		return errUnknownQuestion
	}
	n, err := strconv.Atoi(strings.TrimSuffix(file, ".png"))
	if err != nil || n < 1 || n > feedback.NumQuestions {
		return errUnknownQuestion
	}

	s, err := h.svc.Summary(ctx.Request().Context())
	if err != nil {
		return err
	}
	png, err := charts.RenderHistogram(s, n)
	if err != nil {
		return errors.Wrapf(err, "rendering Q%d chart", n)
	}
	return ctx.Blob(http.StatusOK, "image/png", png)
}

// Export kinds
const (
	exportCSV    = "csv"
	exportBundle = "bundle"
)

func (h feedbackHandlers) exportForm(ctx echo.Context) error {
	if !h.gate.Check(ctx.FormValue("password")) {
		_, data := h.newDashboardPage(ctx)
		data.ExportError = "Wrong password."
		return ctx.Render(http.StatusUnauthorized, dashboardPage, data)
	}

	switch ctx.FormValue("kind") {
	case exportBundle:
		return h.exportBundle(ctx)
	case exportCSV, "":
		return h.exportCSV(ctx)
	default:
		return core.NewValidationError(nil, core.FieldError{Field: "kind", Error: "must be csv or bundle"})
	}
}

func attachment(ctx echo.Context, filename string) {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
}

func (h feedbackHandlers) exportCSV(ctx echo.Context) error {
	responses, err := h.svc.Responses(ctx.Request().Context())
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err = export.WriteResponses(&buf, responses); err != nil {
		return errors.Wrap(err, "writing responses")
	}
	attachment(ctx, export.ResponsesFile)
	return ctx.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h feedbackHandlers) buildBundle(ctx echo.Context) ([]byte, int, time.Time, error) {
	responses, err := h.svc.Responses(ctx.Request().Context())
	if err != nil {
		return nil, 0, time.Time{}, err
	}

	now := nowFunc()
	var buf bytes.Buffer
	if err = export.WriteBundle(&buf, responses, h.svc.Catalog(), now); err != nil {
		return nil, 0, time.Time{}, errors.Wrap(err, "writing bundle")
	}
	return buf.Bytes(), len(responses), now, nil
}

func (h feedbackHandlers) exportBundle(ctx echo.Context) error {
	bundle, _, now, err := h.buildBundle(ctx)
	if err != nil {
		return err
	}
	attachment(ctx, export.BundleFilename(now))
	return ctx.Blob(http.StatusOK, "application/zip", bundle)
}

// API

func (h feedbackHandlers) create(ctx echo.Context) error {
	var nr feedback.NewResponse
	if err := ctx.Bind(&nr); err != nil {
		return errors.Wrap(err, "binding to NewResponse")
	}

	r, err := h.svc.Submit(ctx.Request().Context(), nr)
	observeSubmission(err)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (h feedbackHandlers) summary(ctx echo.Context) error {
	s, err := h.svc.Summary(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

type catalogResponse struct {
	Title     string   `json:"title"`
	Subtitle  string   `json:"subtitle"`
	Scale     []string `json:"scale"`
	Questions []string `json:"questions"`
}

func (h feedbackHandlers) catalog(ctx echo.Context) error {
	catalog := h.svc.Catalog()
	scale := make([]string, 0, feedback.MaxRating-feedback.MinRating+1)
	for r := feedback.MinRating; r <= feedback.MaxRating; r++ {
		scale = append(scale, catalog.ScaleLabel(r))
	}
	return ctx.JSON(http.StatusOK, catalogResponse{
		Title:     catalog.Title(),
		Subtitle:  catalog.Subtitle(),
		Scale:     scale,
		Questions: catalog.Questions(),
	})
}

type (
	TokenRequest struct {
		Password string `json:"password"`
	}

	TokenResponse struct {
		Token string `json:"token"`
	}

	MailRequest struct {
		To string `json:"to"`
	}
)

func (h feedbackHandlers) exportToken(ctx echo.Context) error {
	var data TokenRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TokenRequest")
	}
	if !h.gate.Check(data.Password) {
		return errWrongPassword
	}

	token, err := h.gate.GenerateToken(h.gate.newClaims())
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (h feedbackHandlers) mailBundle(ctx echo.Context) error {
	var data MailRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MailRequest")
	}
	to, err := mail.ParseAddress(data.To)
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "to", Error: "enter a valid email address"})
	}

	bundle, count, now, err := h.buildBundle(ctx)
	if err != nil {
		return err
	}
	msg, err := export.NewBundleMessage(*to, bundle, count, h.svc.Catalog(), now)
	if err != nil {
		return errors.Wrap(err, "attaching bundle")
	}
	h.mailSvc.SendMessages(msg)
	return ctx.NoContent(http.StatusAccepted)
}
