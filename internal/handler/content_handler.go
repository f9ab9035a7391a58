package handler

import (
	"net/http"

	"github.com/hitoshi/stuffscope/internal/content"
	"github.com/hitoshi/stuffscope/internal/model"
)

// ContentLookupFunc はバリアントキーからLP設定を引く関数。
// 通常はcontent.Lookupを渡す。
type ContentLookupFunc func(variant string) (*content.Config, bool)

// ContentHandler はLPコンテンツ配信のHTTPハンドラー。
type ContentHandler struct {
	lookup ContentLookupFunc
}

// NewContentHandler はContentHandlerを生成する。
func NewContentHandler(lookup ContentLookupFunc) *ContentHandler {
	return &ContentHandler{lookup: lookup}
}

// GetContent はバリアント別のLPコンテンツを返す。
// GET /api/content?variant=
// variant未指定時はdefaultを返す。未知のバリアントは404。
func (h *ContentHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	variant := r.URL.Query().Get("variant")
	if variant == "" {
		variant = model.DefaultVariant
	}

	cfg, ok := h.lookup(variant)
	if !ok {
		writeAPIErrorResponse(w, http.StatusNotFound, &model.APIError{
			Code:     "CONTENT_NOT_FOUND",
			Message:  "Unknown content variant: " + variant,
			Category: "validation",
			Action:   "Request one of the published content variants.",
		})
		return
	}

	writeSuccessResponse(w, http.StatusOK, cfg)
}
