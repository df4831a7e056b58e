package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/lwmacct/251219-go-pkg-ctemplate/internal/dictdata"
	"github.com/lwmacct/251219-go-pkg-ctemplate/pkg/ctemplate"
)

// maxBodyBytes 限制请求体（字典数据）大小。
const maxBodyBytes = 4 << 20

// Handler 是模板渲染服务的 HTTP 入口。
type Handler struct {
	reg    *ctemplate.Registry
	strip  ctemplate.Strip
	logger *slog.Logger
}

// NewHandler 创建渲染服务的路由。strip 为请求未指定 ?strip= 时使用的模式。
//
// 路由：
//   - GET  /health
//   - POST /expand/{name...}?strip=N  请求体为 yaml/json 字典数据，返回展开结果
//   - POST /dump                      请求体为 yaml/json 字典数据，返回字典输出
//   - GET  /bad-syntax?refresh=1      返回语法错误与缺失的模板列表
//   - POST /reload                    标记所有已缓存模板，下次使用时检查变化
func NewHandler(reg *ctemplate.Registry, strip ctemplate.Strip, logger *slog.Logger) http.Handler {
	h := &Handler{reg: reg, strip: strip, logger: logger}

	mux := http.NewServeMux()
	// 健康检查端点
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("POST /expand/{name...}", h.handleExpand)
	mux.HandleFunc("POST /dump", h.handleDump)
	mux.HandleFunc("GET /bad-syntax", h.handleBadSyntax)
	mux.HandleFunc("POST /reload", func(w http.ResponseWriter, r *http.Request) {
		reg.ReloadAllIfChanged()
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return mux
}

func (h *Handler) handleExpand(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	strip, err := h.stripParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())

		return
	}

	tpl, err := h.reg.GetTemplate(name, strip)
	switch {
	case errors.Is(err, ctemplate.ErrTemplateNotFound):
		respondWithError(w, http.StatusNotFound, fmt.Sprintf("template %q not found", name))

		return
	case ctemplate.IsSyntaxError(err):
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())

		return
	case err != nil:
		respondWithError(w, http.StatusInternalServerError, err.Error())

		return
	}

	d, ok := h.readDictionary(w, r, name)
	if !ok {
		return
	}
	d.SetFilename(name)

	var buf bytes.Buffer
	if err := tpl.ExpandTo(&buf, d); err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())

		return
	}
	h.logger.Debug("Expanded template", "name", name, "strip", strip, "bytes", buf.Len())

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) handleDump(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "request"
	}
	d, ok := h.readDictionary(w, r, name)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, d.Dump())
}

// badSyntaxResponse 是 /bad-syntax 的响应体。
type badSyntaxResponse struct {
	Bad     []string `json:"bad"`
	Missing []string `json:"missing"`
}

func (h *Handler) handleBadSyntax(w http.ResponseWriter, r *http.Request) {
	strip, err := h.stripParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())

		return
	}
	refresh := r.URL.Query().Get("refresh") == "1"

	respondWithJSON(w, http.StatusOK, badSyntaxResponse{
		Bad:     h.reg.GetBadSyntaxList(refresh, strip),
		Missing: h.reg.GetMissingList(refresh),
	})
}

// ═══════════════════════════════════════════════════════════════════════════
// 辅助函数
// ═══════════════════════════════════════════════════════════════════════════

func (h *Handler) stripParam(r *http.Request) (ctemplate.Strip, error) {
	raw := r.URL.Query().Get("strip")
	if raw == "" {
		return h.strip, nil
	}

	return ctemplate.ParseStrip(raw)
}

// readDictionary 读取请求体并构建字典；失败时已写入错误响应。
func (h *Handler) readDictionary(w http.ResponseWriter, r *http.Request, name string) (*ctemplate.Dictionary, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		code := http.StatusBadRequest
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			code = http.StatusRequestEntityTooLarge
		}
		respondWithError(w, code, fmt.Sprintf("failed to read request body: %v", err))

		return nil, false
	}

	format := dictdata.FormatFromContentType(r.Header.Get("Content-Type"))
	d, err := dictdata.Build(h.reg, name, body, format)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("invalid dictionary data: %v", err))

		return nil, false
	}

	return d, true
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}
