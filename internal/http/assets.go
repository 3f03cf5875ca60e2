package httpapi

import (
	"embed"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

//go:embed web/index.html web/sw.js
var web embed.FS

type manifestIcon struct {
	Src     string `json:"src"`
	Sizes   string `json:"sizes"`
	Type    string `json:"type"`
	Purpose string `json:"purpose,omitempty"`
}

type manifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	Description     string         `json:"description"`
	StartURL        string         `json:"start_url"`
	Display         string         `json:"display"`
	ThemeColor      string         `json:"theme_color"`
	BackgroundColor string         `json:"background_color"`
	Orientation     string         `json:"orientation"`
	Icons           []manifestIcon `json:"icons"`
}

var appManifest = manifest{
	Name:            "Rapid Prototype Genesis",
	ShortName:       "RPG",
	Description:     "From Vision to Lovable Prototype in One Day",
	StartURL:        "/",
	Display:         "standalone",
	ThemeColor:      "#000000",
	BackgroundColor: "#ffffff",
	Orientation:     "portrait",
	Icons: []manifestIcon{
		{Src: "/icon-192.png", Sizes: "192x192", Type: "image/png", Purpose: "any maskable"},
		{Src: "/icon-512.png", Sizes: "512x512", Type: "image/png"},
	},
}

const iconSVG = `<svg width="%[1]d" height="%[1]d" viewBox="0 0 100 100" xmlns="http://www.w3.org/2000/svg">
    <rect width="100" height="100" fill="#000000"/>
    <text x="50" y="50" font-family="SF Pro Display, -apple-system, sans-serif"
          font-size="40" font-weight="bold" fill="#00ff41"
          text-anchor="middle" dominant-baseline="middle">⚡</text>
</svg>
`

func serveIndex(w http.ResponseWriter, r *http.Request) {
	serveEmbedded(w, "web/index.html", "text/html; charset=utf-8")
}

func serveServiceWorker(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Service-Worker-Allowed", "/")
	serveEmbedded(w, "web/sw.js", "application/javascript")
}

func serveEmbedded(w http.ResponseWriter, name, contentType string) {
	data, err := web.ReadFile(name)
	if err != nil {
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

func serveManifest(w http.ResponseWriter, r *http.Request) {
	data, err := json.MarshalIndent(appManifest, "", "  ")
	if err != nil {
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/manifest+json")
	w.Write(data)
}

// serveIcon draws the app icon at the requested size. The body is SVG
// whatever the extension says.
func serveIcon(w http.ResponseWriter, r *http.Request) {
	size, err := strconv.Atoi(chi.URLParam(r, "size"))
	if err != nil || size <= 0 {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	fmt.Fprintf(w, iconSVG, size)
}
