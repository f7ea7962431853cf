package echoapi

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"sort"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/fdpfeedback/core/feedback"
	"github.com/trezcool/fdpfeedback/services/export"
	"github.com/trezcool/fdpfeedback/tests"
)

var t0 = time.Date(2024, 12, 5, 10, 30, 0, 0, feedback.IST)

func newResponseBody(name string, ratings []int) feedback.NewResponse {
	return feedback.NewResponse{
		Name:       name,
		Department: "Physics",
		Mobile:     "9876543210",
		Email:      "asha@college.edu",
		Ratings:    ratings,
	}
}

func Test_feedbackAPI_create(t *testing.T) {
	server, deps, store := setupMem(t)

	tests := []httpTest{
		{
			name:     "blank name",
			body:     marchallObj(t, newResponseBody("  ", testutil.Ratings(3))),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": "this field is required"}),
		},
		{
			name:     "missing ratings",
			body:     marchallObj(t, newResponseBody("Asha", testutil.Ratings(3)[:9])),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "rating out of range",
			body:     marchallObj(t, newResponseBody("Asha", []int{3, 3, 3, 6, 3, 3, 3, 3, 3, 3})),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "malformed body",
			body:     []byte(`{"name": 42`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "valid",
			body:     marchallObj(t, newResponseBody(" Asha ", []int{1, 2, 3, 4, 5, 5, 4, 3, 2, 1})),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := store.Len()
			req, rec := newRequest(http.MethodPost, "/api/responses", tt.body)
			server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if rec.Code != http.StatusCreated {
				assert.Equal(t, before, store.Len(), "rejected submission must not be stored")
				return
			}
			var got feedback.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, "Asha", got.Name)
			assert.Equal(t, []int{1, 2, 3, 4, 5, 5, 4, 3, 2, 1}, got.Ratings)
			assert.Equal(t, before+1, store.Len())
		})
	}

	sent := deps.MailSvc.Sent()
	if assert.Len(t, sent, 1) {
		assert.Equal(t, "asha@college.edu", sent[0].To[0].Address)
		assert.Contains(t, sent[0].TextContent, "Asha")
	}
}

func Test_feedbackAPI_create_storeFailure(t *testing.T) {
	server, _ := setup(t, failingStore{})

	req, rec := newRequest(http.MethodPost, "/api/responses", marchallObj(t, newResponseBody("Asha", testutil.Ratings(4))))
	server.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusServiceUnavailable,
		wantData: marchallObj(t, httpErr{Error: msgUnwritable}),
	}, rec)
}

func Test_feedbackAPI_summary(t *testing.T) {
	t.Run("no data", func(t *testing.T) {
		server, _, _ := setupMem(t)
		req, rec := newRequest(http.MethodGet, "/api/summary")
		server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: msgNoData})}, rec)
	})

	t.Run("unreadable store", func(t *testing.T) {
		server, _ := setup(t, failingStore{})
		req, rec := newRequest(http.MethodGet, "/api/summary")
		server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusServiceUnavailable, wantData: marchallObj(t, httpErr{Error: msgUnreadable})}, rec)
	})

	t.Run("all 3 and all 5", func(t *testing.T) {
		server, _, _ := setupMem(t,
			testutil.NewResponse("A", t0, 3),
			testutil.NewResponse("B", t0.Add(time.Minute), 5),
		)
		req, rec := newRequest(http.MethodGet, "/api/summary")
		server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var got struct {
			Count     int `json:"count"`
			Questions []struct {
				Number    int            `json:"number"`
				Mean      float64        `json:"mean"`
				Histogram map[string]int `json:"histogram"`
			} `json:"questions"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, 2, got.Count)
		require.Len(t, got.Questions, feedback.NumQuestions)
		assert.Equal(t, 1, got.Questions[0].Number)
		assert.Equal(t, 4.0, got.Questions[0].Mean)
		assert.Equal(t, map[string]int{"1": 0, "2": 0, "3": 1, "4": 0, "5": 1}, got.Questions[0].Histogram)
	})
}

func Test_feedbackAPI_catalog(t *testing.T) {
	server, _, _ := setupMem(t)
	catalog := feedback.DefaultCatalog()

	req, rec := newRequest(http.MethodGet, "/api/catalog")
	server.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, catalogResponse{
			Title:     catalog.Title(),
			Subtitle:  catalog.Subtitle(),
			Scale:     []string{"Poor", "Fair", "Satisfactory", "Good", "Excellent"},
			Questions: catalog.Questions(),
		}),
	}, rec)
}

func Test_feedbackAPI_exportToken(t *testing.T) {
	server, _, _ := setupMem(t)

	tests := []httpTest{
		{name: "no password", body: marchallObj(t, TokenRequest{}), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "wrong password"})},
		{name: "wrong password", body: marchallObj(t, TokenRequest{Password: "letmeout"}), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "wrong password"})},
		{name: "right password", body: marchallObj(t, TokenRequest{Password: "letmein"}), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/export/token", tt.body)
			server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
			if tt.wantCode == http.StatusOK {
				var res TokenResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
				assert.NotEmpty(t, res.Token)
			}
		})
	}
}

func Test_feedbackAPI_exportCSV(t *testing.T) {
	r1 := testutil.NewResponse("Asha", t0, 4)
	r2 := testutil.NewResponse("Ravi", t0.Add(time.Hour), 2)
	server, _, _ := setupMem(t, r1, r2)
	token := getToken(t, server)

	tests := []httpTest{
		{name: "no token", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "bad token", token: "not.a.token", wantCode: http.StatusUnauthorized},
		{name: "valid token", token: token, wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/api/export/responses.csv", tt.token)
			server.ServeHTTP(rec, req)
			if tt.wantCode != http.StatusOK {
				checkCodeAndData(t, tt, rec)
				return
			}

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), export.ResponsesFile)
			rows, err := csv.NewReader(rec.Body).ReadAll()
			require.NoError(t, err)
			assert.Equal(t, [][]string{feedback.Header, r1.Row(), r2.Row()}, rows)
		})
	}
}

func Test_feedbackAPI_exportBundle(t *testing.T) {
	server, _, _ := setupMem(t,
		testutil.NewResponse("Asha", t0, 4),
		testutil.NewResponse("Ravi", t0.Add(time.Hour), 2),
	)
	token := getToken(t, server)

	req, rec := newAuthRequest(http.MethodGet, "/api/export/bundle.zip", token)
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get(echo.HeaderContentType))

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)

	want := []string{export.ResponsesFile, export.SummaryFile, export.MeansChart}
	for n := 1; n <= feedback.NumQuestions; n++ {
		want = append(want, export.QuestionChart(n))
	}
	sort.Strings(want)
	assert.Equal(t, want, names)
}

func Test_feedbackAPI_mailBundle(t *testing.T) {
	server, deps, _ := setupMem(t, testutil.NewResponse("Asha", t0, 4))
	token := getToken(t, server)

	tests := []httpTest{
		{name: "no token", body: marchallObj(t, MailRequest{To: "org@college.edu"}), wantCode: http.StatusUnauthorized},
		{
			name:     "invalid address",
			token:    token,
			body:     marchallObj(t, MailRequest{To: "nope"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"to": "enter a valid email address"}),
		},
		{name: "valid", token: token, body: marchallObj(t, MailRequest{To: "org@college.edu"}), wantCode: http.StatusAccepted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/export/mail", tt.token, tt.body)
			server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	sent := deps.MailSvc.Sent()
	if assert.Len(t, sent, 1) {
		msg := sent[0]
		assert.Equal(t, "org@college.edu", msg.To[0].Address)
		if assert.Len(t, msg.Attachments, 1) {
			assert.Equal(t, "application/zip", msg.Attachments[0].ContentType)
		}
	}
}

func Test_metrics(t *testing.T) {
	server, _, _ := setupMem(t)

	req, rec := newRequest(http.MethodPost, "/api/responses", marchallObj(t, newResponseBody("", testutil.Ratings(3))))
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	req, rec = newRequest(http.MethodGet, "/metrics")
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `fdp_feedback_submissions_total{outcome="invalid"}`)
}
