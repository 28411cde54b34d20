package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/slamweb/slam/internal/adapters/http/api"
	"github.com/slamweb/slam/internal/adapters/remote/sportapi"
	service "github.com/slamweb/slam/internal/app"
	"github.com/slamweb/slam/internal/domain/recognition"
	"github.com/slamweb/slam/internal/domain/sport"
	"github.com/slamweb/slam/internal/domain/stats"
	"github.com/slamweb/slam/internal/i18n"
	"github.com/slamweb/slam/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// backend is a Remote whose relay calls all fail with err when set.
type backend struct {
	mu       sync.Mutex
	err      error
	inserted int
	pages    []int
}

func (b *backend) fail() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

func (b *backend) Recognize(context.Context, []recognition.Image) (recognition.Result, error) {
	return recognition.Result{Sport: &sport.Sport{Type: "running", Calories: 80}, RequestID: "r-1"}, nil
}

func (b *backend) List(_ context.Context, page, _ int) ([]sport.Sport, error) {
	if err := b.fail(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.pages = append(b.pages, page)
	b.mu.Unlock()
	return []sport.Sport{{ID: 1, Type: "Swimming"}}, nil
}

func (b *backend) Insert(context.Context, *sport.Sport) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inserted++
	return b.err
}

func (b *backend) Update(context.Context, *sport.Sport) error           { return b.fail() }
func (b *backend) Delete(context.Context, int64) error                  { return b.fail() }
func (b *backend) Import(context.Context, []byte, string, string) error { return b.fail() }

func (b *backend) Stats(context.Context, stats.Query) (*stats.Summary, error) {
	if err := b.fail(); err != nil {
		return nil, err
	}
	return &stats.Summary{TotalCount: 2}, nil
}

func (b *backend) Register(context.Context, string, string, string) error { return b.fail() }
func (b *backend) Login(context.Context, string, string) error            { return b.fail() }
func (b *backend) Logout(context.Context) error                           { return b.fail() }

func (b *backend) Info(context.Context) (sportapi.UserInfo, error) {
	return sportapi.UserInfo{Nickname: "bo"}, b.fail()
}

func (b *backend) UploadAvatar(context.Context, []byte, string) (string, error) {
	return "/avatar.png", b.fail()
}

func (b *backend) Session() (sportapi.Session, error) {
	return sportapi.Session{}, sportapi.ErrUnauthorized
}

func newRouter(b *backend) (http.Handler, *service.Service) {
	svc := service.New(b, service.WithWorkerCount(1), service.WithLocation(time.UTC))
	So(svc.Start(context.Background()), ShouldBeNil)
	r := chi.NewRouter()
	api.NewServer(svc, svc, api.WithDefaultLang(i18n.EN)).Register(r)
	return r, svc
}

func do(h http.Handler, method, path, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
	return out
}

func TestServer_Register(t *testing.T) {
	Convey("Given the API routes over a started service", t, func() {
		h, svc := newRouter(&backend{})
		defer svc.Stop()

		Convey("The health endpoint serves metrics", func() {
			w := do(h, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("The status endpoint reports the service", func() {
			w := do(h, http.MethodGet, "/status", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["started"], ShouldEqual, true)
		})

		Convey("The schema endpoint groups fields by layout", func() {
			w := do(h, http.MethodGet, "/schema/extra?type=Running&per_row=4", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			rows := decode(w)["rows"].([]any)
			So(len(rows), ShouldEqual, 2)

			w = do(h, http.MethodGet, "/schema/extra?type=Running&per_row=x", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("The defaults endpoint returns a blank track", func() {
			w := do(h, http.MethodGet, "/schema/defaults?type=swim", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"main_stroke":"unknown"`)
		})
	})
}

func TestDraftRoutes(t *testing.T) {
	Convey("Given a draft created over HTTP", t, func() {
		b := &backend{}
		h, svc := newRouter(b)
		defer svc.Stop()

		w := do(h, http.MethodPost, "/drafts", `{"type":"Swimming"}`)
		So(w.Code, ShouldEqual, http.StatusCreated)
		id := decode(w)["id"].(string)

		Convey("Fields are patched by scope", func() {
			w := do(h, http.MethodPatch, "/drafts/"+id, `{"scope":"extra","field":"stroke_avg","value":"28"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"stroke_avg":28`)

			w = do(h, http.MethodPatch, "/drafts/"+id, `{"scope":"basic","field":"calories","value":"410"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"calories":410`)
		})

		Convey("A create without type or record is rejected", func() {
			w := do(h, http.MethodPost, "/drafts", `{}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(w)["code"], ShouldEqual, "bad_request")
		})

		Convey("Bad patches are rejected", func() {
			w := do(h, http.MethodPatch, "/drafts/"+id, `{"scope":"nope","field":"x","value":"1"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)

			w = do(h, http.MethodPatch, "/drafts/"+id, `{"scope":"extra","field":"cadence_avg","value":"1"}`)
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)

			w = do(h, http.MethodPatch, "/drafts/"+id, `{"scope":"track","index":2,"field":"distance_meter","value":"1"}`)
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
		})

		Convey("Tracks are added and removed", func() {
			w := do(h, http.MethodPost, "/drafts/"+id+"/tracks", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(len(decode(w)["sport"].(map[string]any)["tracks"].([]any)), ShouldEqual, 1)

			w = do(h, http.MethodDelete, "/drafts/"+id+"/tracks/x", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)

			w = do(h, http.MethodDelete, "/drafts/"+id+"/tracks/0", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("The form hides zero numbers", func() {
			w := do(h, http.MethodGet, "/drafts/"+id+"/form?lang=en", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			extra := decode(w)["extra"].([]any)
			row := extra[0].([]any)
			So(len(row), ShouldEqual, 3)
			So(row[1].(map[string]any)["value"], ShouldEqual, "")
		})

		Convey("Unknown drafts are 404 with a localized message", func() {
			w := do(h, http.MethodGet, "/drafts/missing", "", "Accept-Language", "zh-CN,zh;q=0.9")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decode(w)["message"], ShouldEqual, i18n.Label(i18n.ZH, "errors.notFound"))
		})

		Convey("Submitting inserts the record and drops the draft", func() {
			w := do(h, http.MethodPost, "/drafts/"+id+"/submit", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["action"], ShouldEqual, "inserted")
			So(b.inserted, ShouldEqual, 1)

			w = do(h, http.MethodGet, "/drafts/"+id, "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("A failed submit keeps the draft", func() {
			b.mu.Lock()
			b.err = sportapi.ErrTimeout
			b.mu.Unlock()
			w := do(h, http.MethodPost, "/drafts/"+id+"/submit", "")
			So(w.Code, ShouldEqual, http.StatusGatewayTimeout)
			So(decode(w)["message"], ShouldEqual, i18n.Label(i18n.EN, "errors.timeout"))

			w = do(h, http.MethodGet, "/drafts/"+id, "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})
	})
}

func TestRelayRoutes(t *testing.T) {
	Convey("Given the API over a backend", t, func() {
		b := &backend{}
		h, svc := newRouter(b)
		defer svc.Stop()

		Convey("Records and statistics are relayed", func() {
			w := do(h, http.MethodGet, "/sports?page=1&size=5", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			w = do(h, http.MethodGet, "/sports", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			b.mu.Lock()
			So(b.pages, ShouldResemble, []int{1, 0})
			b.mu.Unlock()

			w = do(h, http.MethodGet, "/sports/stats?kind=year&year=2025", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(len(decode(w)["series"].([]any)), ShouldEqual, 12)

			w = do(h, http.MethodGet, "/sports/stats?kind=decade&year=2025", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)

			w = do(h, http.MethodGet, "/sports/stats?kind=month&year=2025", "")
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)

			w = do(h, http.MethodGet, "/overview", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Backend failures map to gateway statuses", func() {
			for _, tc := range []struct {
				err    error
				status int
				code   string
			}{
				{sportapi.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
				{sportapi.ErrTimeout, http.StatusGatewayTimeout, "timeout"},
				{sportapi.ErrServerBusy, http.StatusBadGateway, "busy"},
				{&sportapi.RemoteError{Status: 200, Message: "bad record"}, http.StatusBadRequest, "remote"},
			} {
				b.mu.Lock()
				b.err = tc.err
				b.mu.Unlock()
				w := do(h, http.MethodPost, "/sports/delete", `{"id":3}`)
				So(w.Code, ShouldEqual, tc.status)
				So(decode(w)["code"], ShouldEqual, tc.code)
			}
		})

		Convey("Registration errors are localized", func() {
			w := do(h, http.MethodPost, "/user/register?lang=zh", `{"name":"a","password":"123","confirm":"123"}`)
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(decode(w)["message"], ShouldEqual, i18n.Label(i18n.ZH, "register.errorLength"))
		})

		Convey("Without a session the shell is sent to login", func() {
			w := do(h, http.MethodGet, "/user/session", "")
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("Avatars are uploaded as multipart", func() {
			body, ct := multipartBody("file", "me.png", []byte("\x89PNG\r\n\x1a\n"))
			req := httptest.NewRequest(http.MethodPost, "/user/avatar", body)
			req.Header.Set("Content-Type", ct)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode(rec)["avatar"], ShouldEqual, "/avatar.png")
		})
	})
}

func multipartBody(field, name string, data []byte) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, name)
	So(err, ShouldBeNil)
	_, err = fw.Write(data)
	So(err, ShouldBeNil)
	So(mw.Close(), ShouldBeNil)
	return &buf, mw.FormDataContentType()
}

func TestRecognitionRoutes(t *testing.T) {
	Convey("Given an uploaded screenshot", t, func() {
		h, svc := newRouter(&backend{})
		defer svc.Stop()
		png := []byte("\x89PNG\r\n\x1a\n0000 screenshot")

		post := func() *httptest.ResponseRecorder {
			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			hdr := make(map[string][]string)
			hdr["Content-Disposition"] = []string{`form-data; name="image"; filename="s.png"`}
			hdr["Content-Type"] = []string{"image/png"}
			pw, err := mw.CreatePart(hdr)
			So(err, ShouldBeNil)
			_, _ = pw.Write(png)
			So(mw.Close(), ShouldBeNil)
			req := httptest.NewRequest(http.MethodPost, "/recognitions", &buf)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			return w
		}

		Convey("A job is accepted and finishes with a draft", func() {
			w := post()
			So(w.Code, ShouldEqual, http.StatusAccepted)
			id := decode(w)["job_id"].(string)

			var job map[string]any
			for i := 0; i < 200; i++ {
				job = decode(do(h, http.MethodGet, "/recognitions/"+id, ""))
				if job["status"] == "done" {
					break
				}
				time.Sleep(10 * time.Millisecond)
			}
			So(job["status"], ShouldEqual, "done")

			draftID := job["draft_id"].(string)
			d := decode(do(h, http.MethodGet, "/drafts/"+draftID, ""))
			So(d["origin"], ShouldEqual, "recognition")
			So(d["sport"].(map[string]any)["type"], ShouldEqual, "Running")

			Convey("and the same upload is answered by that job", func() {
				w := post()
				So(w.Code, ShouldEqual, http.StatusOK)
				out := decode(w)
				So(out["job_id"], ShouldEqual, id)
				So(out["duplicate"], ShouldEqual, true)
			})
		})

		Convey("A request without images is rejected", func() {
			w := do(h, http.MethodPost, "/recognitions", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Unknown jobs are 404", func() {
			w := do(h, http.MethodGet, "/recognitions/nope", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}
