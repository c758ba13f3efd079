package httpapi

import (
	"net/http"
	"path/filepath"
	"sync/atomic"

	"github.com/mdeeno/motoieum/internal/config"
)

type ConfigHandler struct {
	CfgVal      *atomic.Value // stores config.Config
	UserCfgPath string
}

func (h ConfigHandler) current() config.Config {
	cur, _ := h.CfgVal.Load().(config.Config)
	return cur
}

func (h ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	cur := h.current()
	if cur.Store.Key != "" {
		cur.Store.Key = "***"
	}
	if cur.Store.DSN != "" {
		cur.Store.DSN = "***"
	}
	WriteJSON(w, http.StatusOK, cur)
}

func (h ConfigHandler) Path(w http.ResponseWriter, r *http.Request) {
	abs, _ := filepath.Abs(h.UserCfgPath)
	WriteJSON(w, http.StatusOK, map[string]any{"path": abs})
}

func (h ConfigHandler) Validate(w http.ResponseWriter, r *http.Request) {
	_, vr := config.NormalizeAndValidate(h.current())
	WriteJSON(w, http.StatusOK, map[string]any{
		"ok":       vr.OK(),
		"errors":   vr.Errors,
		"warnings": vr.Warnings,
	})
}
