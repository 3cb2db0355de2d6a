package handlers

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Templates parses the embedded page templates for gin's HTML renderer.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templatesFS, "templates/*.html"))
}

// WebHandler serves the browser form and its result fragment.
type WebHandler struct {
	submissions *SubmissionHandler
}

func NewWebHandler(submissions *SubmissionHandler) *WebHandler {
	return &WebHandler{submissions: submissions}
}

// Index handles GET /.
func (h *WebHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", nil)
}

// Submit handles POST /submit and answers with an HTML fragment.
func (h *WebHandler) Submit(c *gin.Context) {
	in, err := h.submissions.bindSubmission(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	res, err := h.submissions.svc.Submit(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.HTML(http.StatusOK, "result.html", gin.H{
		"Message": res.Message,
		"Emotion": string(res.Submission.Emotion),
	})
}

func (h *WebHandler) respondError(c *gin.Context, err error) {
	appErr := asAppError(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		logFailure(c, err)
	}
	c.HTML(appErr.StatusCode, "error.html", appErr.Message)
}
