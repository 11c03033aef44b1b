package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studybuddy/internal/app"
	"studybuddy/internal/pkg/pdfextract"
	"studybuddy/internal/transport/http/response"
)

// Uploaded study-note PDFs are capped well above any realistic set of
// lecture notes.
const maxPDFBytes = 10 << 20

type StudyHandler struct {
	studyService *app.StudyService
}

type GenerateRequest struct {
	UserInput string `json:"user_input" binding:"required"`
}

type UpgradeRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required,max=32"`
}

func NewStudyHandler(studyService *app.StudyService) *StudyHandler {
	return &StudyHandler{studyService: studyService}
}

func (h *StudyHandler) Dashboard(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	dashboard, err := h.studyService.GetDashboard(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrUserNotFound):
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "load dashboard failed")
		}
		return
	}

	response.OK(c, dashboard)
}

func (h *StudyHandler) Generate(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	h.runGeneration(c, userID, req.UserInput)
}

// GenerateFromPDF accepts a multipart "notes" file, extracts its plain
// text, and runs the same workflow as Generate.
func (h *StudyHandler) GenerateFromPDF(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	fileHeader, err := c.FormFile("notes")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing notes file")
		return
	}
	if fileHeader.Size > maxPDFBytes {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "notes file too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "open notes file failed")
		return
	}
	defer file.Close()

	text, err := pdfextract.ExtractText(file)
	if err != nil {
		if errors.Is(err, pdfextract.ErrNoText) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
			return
		}
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "parse pdf failed")
		return
	}

	h.runGeneration(c, userID, text)
}

func (h *StudyHandler) runGeneration(c *gin.Context, userID uint, input string) {
	set, err := h.studyService.GenerateFromText(c.Request.Context(), userID, input)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrInputEmpty):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrQuotaExceeded):
			response.ErrorData(c, http.StatusForbidden, response.CodeQuotaExceeded,
				"Daily limit reached. Upgrade to Pro for unlimited generations!",
				gin.H{"show_upgrade": true})
		case errors.Is(err, app.ErrUserNotFound):
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, err.Error())
		case errors.Is(err, app.ErrGenerator):
			response.Error(c, http.StatusBadGateway, response.CodeGeneratorError, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "generate flashcards failed")
		}
		return
	}

	response.OK(c, gin.H{"set_id": set.ID})
}

func (h *StudyHandler) GetSet(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	setID64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || setID64 == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid set id")
		return
	}

	view, err := h.studyService.GetSet(userID, uint(setID64))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrSetNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSetNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "load flashcard set failed")
		}
		return
	}

	response.OK(c, view)
}

func (h *StudyHandler) Upgrade(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req UpgradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.studyService.RequestUpgrade(userID, req.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrUserNotFound):
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "save payment preference failed")
		}
		return
	}

	response.OK(c, result)
}

func (h *StudyHandler) PromoteUser(c *gin.Context) {
	targetID64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || targetID64 == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid user id")
		return
	}

	if err := h.studyService.PromoteToPro(uint(targetID64)); err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrUserNotFound):
			response.Error(c, http.StatusNotFound, response.CodeUserNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "promote user failed")
		}
		return
	}

	response.OK(c, gin.H{"message": "user upgraded to pro"})
}
