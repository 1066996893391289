package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"

	"findash-api/internal/logic"
	"findash-api/internal/svc"
	"findash-api/pkg/catalog"
)

//go:embed static/index.html
var staticFS embed.FS

var indexTemplate = template.Must(template.ParseFS(staticFS, "static/index.html"))

type kindOption struct {
	Value    string
	Label    string
	Selected bool
}

type indexPage struct {
	Title            string
	APIPrefix        string
	Kinds            []kindOption
	MinDays          int
	MaxDays          int
	DefaultDays      int
	MinThreshold     float64
	MaxThreshold     float64
	DefaultThreshold float64
}

var kindLabels = map[catalog.Kind]string{
	catalog.KindCrypto: "Cryptocurrencies",
	catalog.KindEquity: "Stocks (Stock Exchange)",
}

func newIndexPage() indexPage {
	page := indexPage{
		Title:            "Financial Dashboard",
		APIPrefix:        "/api",
		MinDays:          logic.MinDays,
		MaxDays:          logic.MaxDays,
		DefaultDays:      logic.DefaultDays,
		MinThreshold:     logic.MinThreshold,
		MaxThreshold:     logic.MaxThreshold,
		DefaultThreshold: logic.DefaultThreshold,
	}
	for i, kind := range catalog.Kinds {
		page.Kinds = append(page.Kinds, kindOption{
			Value:    string(kind),
			Label:    kindLabels[kind],
			Selected: i == 0,
		})
	}
	return page
}

// IndexHandler serves the dashboard page. The page itself is static; all data is
// loaded from the JSON endpoints.
func IndexHandler(_ *svc.ServiceContext) http.HandlerFunc {
	page := newIndexPage()
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := indexTemplate.Execute(&buf, page); err != nil {
			logx.WithContext(r.Context()).Errorf("render index: %v", err)
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}
