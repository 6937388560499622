package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/codetrio/codetrio-web/internal/flash"
	"github.com/codetrio/codetrio-web/internal/middleware"
	"github.com/codetrio/codetrio-web/internal/model"
	"github.com/codetrio/codetrio-web/internal/rank"
	"github.com/codetrio/codetrio-web/internal/response"
	"github.com/codetrio/codetrio-web/internal/service"
	"github.com/codetrio/codetrio-web/internal/view"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DashboardHandler serves the home page, its class list fragment and the
// admin export.
type DashboardHandler struct {
	classes *service.ClassService
	flash   *flash.Jar
	log     zerolog.Logger
	now     func() time.Time
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(classes *service.ClassService, jar *flash.Jar, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		classes: classes,
		flash:   jar,
		log:     log.With().Str("component", "dashboard_handler").Logger(),
		now:     time.Now,
	}
}

// Index godoc
// GET /
// Renders the dashboard shell. The class list loads separately so the
// header and ranking section never wait on the data store.
func (h *DashboardHandler) Index(c *gin.Context) {
	state := middleware.GetSessionState(c)
	isAdmin := state.HasRole(model.RoleAdmin)

	c.HTML(http.StatusOK, view.PageIndex, view.Dashboard{
		Page: view.Page{
			Title:  "Danh sách lớp học",
			Toasts: h.flash.Pop(c.Writer, c.Request),
		},
		User:     state.User(),
		Role:     state.Role(),
		IsAdmin:  isAdmin,
		Showcase: rank.Showcase(),
	})
}

// Classes godoc
// GET /partials/classes
// Renders the class grid, the role-specific empty state, or an error state.
func (h *DashboardHandler) Classes(c *gin.Context) {
	state := middleware.GetSessionState(c)
	data := view.ClassList{IsAdmin: state.HasRole(model.RoleAdmin)}

	classes, err := h.classes.List(c.Request.Context(), state.AccessToken())
	if err != nil {
		h.log.Error().Err(err).Str("user_id", state.User().ID).Msg("load classes")
		data.Failed = true
		c.HTML(http.StatusBadGateway, view.PartialClasses, data)
		return
	}

	data.Classes = classes
	c.HTML(http.StatusOK, view.PartialClasses, data)
}

// ExportClasses godoc
// GET /admin/classes/export.xlsx
// Downloads the class list as a spreadsheet. Admin only.
func (h *DashboardHandler) ExportClasses(c *gin.Context) {
	state := middleware.GetSessionState(c)

	var buf bytes.Buffer
	if err := h.classes.Export(c.Request.Context(), state.AccessToken(), &buf); err != nil {
		h.log.Error().Err(err).Msg("export classes")
		response.Fail(c, http.StatusBadGateway, response.ErrClassesUnavailable)
		return
	}

	filename := fmt.Sprintf("lop-hoc-%s.xlsx", h.now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// NotFound renders the 404 page.
func (h *DashboardHandler) NotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, view.PageNotFound, view.Page{Title: "404"})
}

// Loading renders the loading page shown while the session is unresolved.
func (h *DashboardHandler) Loading(c *gin.Context) {
	c.HTML(http.StatusServiceUnavailable, view.PageLoading, nil)
}
