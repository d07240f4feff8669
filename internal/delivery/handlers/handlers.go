package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"CareNotifier/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	dispatcher domain.Dispatcher
	inbox      domain.Inbox
	queue      domain.NotificationQueue
}

// NewHandlersSet создает набор обработчиков. queue может быть nil,
// тогда асинхронная постановка отвечает 503.
func NewHandlersSet(dispatcher domain.Dispatcher, inbox domain.Inbox, queue domain.NotificationQueue) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		inbox:      inbox,
		queue:      queue,
	}
}

// internalErrorMessage ответ на непредвиденную ошибку. Подробности только в логе.
const internalErrorMessage = "Внутренняя ошибка сервера"

var validate = validator.New()

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "обязательное поле"
	case "max":
		return "слишком длинное значение"
	case "min":
		return "пустое значение"
	default:
		return "некорректное значение"
	}
}

// bindRequest разбирает и валидирует тело запроса. При ошибке ответ уже записан.
func bindRequest(c *gin.Context) (DispatchRequest, bool) {
	var req DispatchRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный JSON: " + err.Error()})
		return req, false
	}

	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			errorsMap := make(map[string]string)
			for _, e := range verrs {
				errorsMap[e.Field()] = validationMessage(e)
			}

			c.JSON(http.StatusBadRequest, gin.H{
				"message": "Ошибка валидации",
				"errors":  errorsMap,
			})
			return req, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return req, false
	}
	return req, true
}

// DispatchNotificationHandler принимает уведомление для пользователя.
func (h *Handler) DispatchNotificationHandler(c *gin.Context) {
	req, ok := bindRequest(c)
	if !ok {
		return
	}

	id, err := h.dispatcher.Dispatch(c.Request.Context(), req.toDomain())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrPersistence):
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Хранилище уведомлений недоступно"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"result": DispatchResponse{ID: id},
	})
}

// EnqueueNotificationHandler ставит уведомление в очередь для воркеров.
func (h *Handler) EnqueueNotificationHandler(c *gin.Context) {
	if h.queue == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Очередь уведомлений отключена"})
		return
	}

	req, ok := bindRequest(c)
	if !ok {
		return
	}

	messageID, err := h.queue.Publish(c.Request.Context(), req.toDomain())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Очередь уведомлений недоступна"})
		}
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"result": EnqueueResponse{MessageID: messageID},
	})
}

// ListNotificationsHandler возвращает уведомления пользователя.
func (h *Handler) ListNotificationsHandler(c *gin.Context) {
	userID := c.Param("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit is invalid"})
			return
		}
		limit = v
	}

	records, err := h.inbox.List(c.Request.Context(), userID, limit)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": records})
}

// MarkReadHandler помечает уведомление как прочитанное.
func (h *Handler) MarkReadHandler(c *gin.Context) {
	userID := c.Param("userId")
	id := c.Param("id")
	if userID == "" || id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId and id are required"})
		return
	}

	err := h.inbox.MarkRead(c.Request.Context(), userID, id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Уведомление не найдено"})
		case errors.Is(err, domain.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": id + " read"})
}

// HealthHandler отвечает, что процесс жив.
func (h *Handler) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
