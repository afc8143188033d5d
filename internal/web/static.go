package web

import (
	"io/fs"
	"mime"
	"net/http"
	"path"
)

// staticFile is a static asset held in memory with its ETag.
type staticFile struct {
	content     []byte
	etag        string
	contentType string
}

// staticFiles caches the embedded static assets. It is filled once by New and
// read-only afterwards.
type staticFiles struct {
	files map[string]staticFile
}

func loadStaticFiles() (*staticFiles, error) {
	entries, err := fs.ReadDir(staticFS, "static")
	if err != nil {
		return nil, err
	}
	sf := &staticFiles{files: make(map[string]staticFile, len(entries))}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		content, err := staticFS.ReadFile("static/" + e.Name())
		if err != nil {
			return nil, err
		}
		contentType := mime.TypeByExtension(path.Ext(e.Name()))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		sf.files[e.Name()] = staticFile{
			content:     content,
			etag:        contentETag(content),
			contentType: contentType,
		}
	}
	return sf, nil
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	f, ok := s.static.files[r.PathValue("file")]
	if !ok {
		http.NotFound(w, r)
		return
	}

	// Conditional request (304 Not Modified)
	if match := r.Header.Get("If-None-Match"); match == f.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", f.contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("ETag", f.etag)
	w.Write(f.content)
}
