package handler

import (
	"encoding/xml"
	"fmt"
	"net/http"

	"go-parish-platform/internal/service"
)

// SeoHandler holds dependencies for SEO-related handlers.
type SeoHandler struct {
	pages    *service.PageService
	parishes *service.ParishService
	baseURL  string
}

// NewSeoHandler creates a new SeoHandler. baseURL is the externally
// visible origin, like "https://parishes.example.org".
func NewSeoHandler(pages *service.PageService, parishes *service.ParishService, baseURL string) *SeoHandler {
	return &SeoHandler{pages: pages, parishes: parishes, baseURL: baseURL}
}

// robotsHandler serves a static robots.txt file.
func (h *SeoHandler) robotsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "User-agent: *")
	fmt.Fprintln(w, "Allow: /p/")
	fmt.Fprintln(w, "Disallow: /admin/")
	fmt.Fprintln(w, "Disallow: /api/")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Sitemap: "+h.baseURL+"/sitemap.xml")
}

const sitemapDateFormat = "2006-01-02"

type sitemapURL struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// sitemapHandler generates a sitemap of every parish's published pages.
func (h *SeoHandler) sitemapHandler(w http.ResponseWriter, r *http.Request) {
	parishes, err := h.parishes.ListParishes(r.Context())
	if err != nil {
		http.Error(w, "Failed to retrieve parishes for sitemap", http.StatusInternalServerError)
		return
	}

	sitemap := urlSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, parish := range parishes {
		pages, err := h.pages.ListPages(r.Context(), parish.ID)
		if err != nil {
			http.Error(w, "Failed to retrieve pages for sitemap", http.StatusInternalServerError)
			return
		}
		for _, page := range pages {
			if !page.Published {
				continue
			}
			sitemap.URLs = append(sitemap.URLs, sitemapURL{
				Loc:     fmt.Sprintf("%s/p/%s/%s", h.baseURL, parish.Slug, page.Slug),
				LastMod: page.UpdatedAt.Format(sitemapDateFormat),
			})
		}
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Write([]byte(xml.Header))
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(sitemap); err != nil {
		http.Error(w, "Failed to generate sitemap XML", http.StatusInternalServerError)
		return
	}
}
