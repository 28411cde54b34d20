package view

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-chi/chi/v5"
	. "github.com/smartystreets/goconvey/convey"

	repository "github.com/slamweb/slam/internal/adapters/repository"
	"github.com/slamweb/slam/internal/domain/sportfield"
	"github.com/slamweb/slam/internal/domain/types"
	"github.com/slamweb/slam/internal/i18n"
	"github.com/slamweb/slam/pkg/logger"
)

func init() {
	_ = logger.Init()
}

type formStub struct {
	form   types.Form
	err    error
	lang   i18n.Lang
	perRow int
}

func (f *formStub) Form(_ context.Context, id string, lang i18n.Lang, perRow int) (types.Form, error) {
	f.lang, f.perRow = lang, perRow
	if f.err != nil {
		return types.Form{}, f.err
	}
	if id != f.form.DraftID {
		return types.Form{}, fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	return f.form, nil
}

func swimmingForm() types.Form {
	stroke := types.FieldView{
		Key:   "main_stroke",
		Label: "Stroke",
		Kind:  sportfield.KindSelect,
		Options: []sportfield.FieldOption{
			{Value: "unknown", Label: "Unknown"},
			{Value: "freestyle", Label: "Freestyle"},
		},
		Value: "freestyle",
	}
	avg := types.FieldView{Key: "stroke_avg", Label: "Strokes", Kind: sportfield.KindNumber, Value: "12"}
	swolf := types.FieldView{Key: "swolf_avg", Label: "SWOLF <avg>", Kind: sportfield.KindNumber, Value: ""}
	return types.Form{
		DraftID: "d1",
		Type:    "Swimming",
		Extra:   [][]types.FieldView{{stroke, avg}, {swolf}},
		Tracks: []types.TrackForm{{
			Index: 0,
			Basic: []types.FieldView{{Key: "distance_meter", Label: "Distance", Kind: sportfield.KindNumber, Value: "50"}},
			Extra: [][]types.FieldView{{avg}},
		}},
	}
}

func serve(h *Handler, target string) (*httptest.ResponseRecorder, *goquery.Document) {
	r := chi.NewRouter()
	h.Register(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	So(err, ShouldBeNil)
	return rec, doc
}

func TestExtraView(t *testing.T) {
	Convey("Given a draft form", t, func() {
		stub := &formStub{form: swimmingForm()}
		h := NewHandler(stub, i18n.EN, 2)

		Convey("Extra rows render one div per row", func() {
			rec, doc := serve(h, "/view/drafts/d1/extra")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Header().Get("Content-Type"), ShouldStartWith, "text/html")
			So(doc.Find("div.row").Length(), ShouldEqual, 2)
			So(doc.Find("div.row").First().Find("label.field").Length(), ShouldEqual, 2)
			So(stub.perRow, ShouldEqual, 2)
			So(stub.lang, ShouldEqual, i18n.EN)
		})

		Convey("Select fields mark the current option", func() {
			_, doc := serve(h, "/view/drafts/d1/extra")
			sel := doc.Find(`select[name="main_stroke"]`)
			So(sel.Length(), ShouldEqual, 1)
			So(sel.Find("option").Length(), ShouldEqual, 2)
			v, _ := sel.Find("option[selected]").Attr("value")
			So(v, ShouldEqual, "freestyle")
			_, disabled := sel.Attr("disabled")
			So(disabled, ShouldBeFalse)
		})

		Convey("Number fields render typed inputs with escaped labels", func() {
			_, doc := serve(h, "/view/drafts/d1/extra")
			in := doc.Find(`input[name="stroke_avg"]`)
			typ, _ := in.Attr("type")
			val, _ := in.Attr("value")
			So(typ, ShouldEqual, "number")
			So(val, ShouldEqual, "12")
			So(doc.Find(`label[data-key="swolf_avg"] span`).Text(), ShouldEqual, "SWOLF <avg>")
		})

		Convey("Readonly disables every input", func() {
			_, doc := serve(h, "/view/drafts/d1/extra?readonly=true&per_row=1&lang=zh")
			_, ro := doc.Find(`input[name="stroke_avg"]`).Attr("readonly")
			_, disabled := doc.Find("select").Attr("disabled")
			So(ro, ShouldBeTrue)
			So(disabled, ShouldBeTrue)
			So(stub.perRow, ShouldEqual, 1)
			So(stub.lang, ShouldEqual, i18n.ZH)
		})

		Convey("Tracks render as prefixed fieldsets", func() {
			rec, doc := serve(h, "/view/drafts/d1/tracks")
			So(rec.Code, ShouldEqual, http.StatusOK)
			fs := doc.Find("fieldset.track")
			So(fs.Length(), ShouldEqual, 1)
			idx, _ := fs.Attr("data-index")
			So(idx, ShouldEqual, "0")
			So(fs.Find(`input[name="tracks.0.distance_meter"]`).Length(), ShouldEqual, 1)
			So(fs.Find(`input[name="tracks.0.stroke_avg"]`).Length(), ShouldEqual, 1)
		})

		Convey("Unknown drafts are 404", func() {
			rec, _ := serve(h, "/view/drafts/nope/extra")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("A bad per_row is 400", func() {
			rec, _ := serve(h, "/view/drafts/d1/extra?per_row=-1")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Other failures are 500", func() {
			stub.err = fmt.Errorf("boom")
			rec, _ := serve(h, "/view/drafts/d1/extra")
			So(rec.Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestFieldComponents(t *testing.T) {
	Convey("Given the field components", t, func() {
		form := swimmingForm()

		Convey("Field renders on its own with a prefixed name", func() {
			var buf bytes.Buffer
			So(Field(form.Extra[0][1], "tracks.2", true).Render(context.Background(), &buf), ShouldBeNil)
			doc, err := goquery.NewDocumentFromReader(&buf)
			So(err, ShouldBeNil)
			in := doc.Find(`label.field input[name="tracks.2.stroke_avg"]`)
			So(in.Length(), ShouldEqual, 1)
			_, ro := in.Attr("readonly")
			So(ro, ShouldBeTrue)
		})

		Convey("TrackRows nests ExtraRows inside each fieldset", func() {
			var buf bytes.Buffer
			So(TrackRows(form.Tracks, false).Render(context.Background(), &buf), ShouldBeNil)
			doc, err := goquery.NewDocumentFromReader(&buf)
			So(err, ShouldBeNil)
			So(doc.Find("fieldset.track > div.row").Length(), ShouldEqual, 2)
			_, ro := doc.Find("input").Attr("readonly")
			So(ro, ShouldBeFalse)
		})

		Convey("A cancelled context stops rendering", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			var buf bytes.Buffer
			So(ExtraRows(form.Extra, "", false).Render(ctx, &buf), ShouldEqual, context.Canceled)
			So(buf.Len(), ShouldEqual, 0)
		})
	})
}
