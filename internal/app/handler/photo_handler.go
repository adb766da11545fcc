package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/ds"
)

// UploadPhoto загружает фотографию стадии в MinIO и привязывает к сессии
// @Summary Загрузка фотографии
// @Description Принимает multipart-файл, сохраняет в MinIO и добавляет в список стадии
// @Tags Photos
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID сессии"
// @Param stage formData string true "Стадия: intake, parking, pre_return, delivery"
// @Param photo formData file true "Файл фотографии"
// @Success 201 {object} dto.PhotoResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/sessions/{id}/photos [post]
func (h *APIHandler) UploadPhoto(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID сессии")
		return
	}

	stage := ds.PhotoStage(c.PostForm("stage"))
	if !ds.ValidPhotoStage(stage) {
		h.errorResponse(c, http.StatusBadRequest, "Неизвестная стадия фотографий")
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Файл не передан: "+err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Не удалось открыть файл")
		return
	}
	defer file.Close()

	fileData, err := io.ReadAll(file)
	if err != nil {
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка чтения файла")
		return
	}

	upload, err := h.MinIOClient.UploadPhoto(fileData, fileHeader.Filename, string(stage))
	if err != nil {
		logrus.Error("Error uploading photo to MinIO: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка загрузки файла в хранилище")
		return
	}

	photo, err := h.Lifecycle.AppendPhoto(id, stage, ds.SessionPhoto{
		URL:         upload.URL,
		Filename:    upload.ID,
		Size:        upload.Size,
		ContentType: upload.ContentType,
	})
	if err != nil {
		// сессия фото не приняла, подчищаем объект в MinIO
		if delErr := h.MinIOClient.DeleteFile(upload.ID); delErr != nil {
			logrus.Warn("Failed to delete orphan photo from MinIO: ", delErr)
		}
		h.domainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toPhotoResponse(photo))
}

// DeletePhoto удаляет фотографию, если гейт её стадии ещё не пройден
// @Summary Удаление фотографии
// @Description После перехода, требовавшего стадию, список фотографий неизменяем
// @Tags Photos
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID сессии"
// @Param photo_id path int true "ID фотографии"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/sessions/{id}/photos/{photo_id} [delete]
func (h *APIHandler) DeletePhoto(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID сессии")
		return
	}

	photoIDStr := c.Param("photo_id")
	photoID, err := strconv.ParseUint(photoIDStr, 10, 32)
	if err != nil || photoID == 0 {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID фотографии")
		return
	}

	// запоминаем имя объекта до удаления записи
	session, err := h.Lifecycle.GetSession(id)
	if err != nil {
		h.domainError(c, err)
		return
	}
	var objectName string
	for i := range session.Photos {
		if session.Photos[i].ID == uint(photoID) {
			objectName = session.Photos[i].Filename
			break
		}
	}

	if err := h.Lifecycle.RemovePhoto(id, uint(photoID)); err != nil {
		h.domainError(c, err)
		return
	}

	if objectName != "" {
		if err := h.MinIOClient.DeleteFile(objectName); err != nil {
			logrus.Warn("Failed to delete photo from MinIO: ", err)
		}
	}

	h.successResponse(c, http.StatusOK, "Фотография удалена", nil)
}

// GetSessionPhotos возвращает фотографии сессии по стадиям
// @Summary Фотографии сессии
// @Tags Photos
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID сессии"
// @Param stage query string false "Фильтр по стадии"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/sessions/{id}/photos [get]
func (h *APIHandler) GetSessionPhotos(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID сессии")
		return
	}

	session, err := h.Lifecycle.GetSession(id)
	if err != nil {
		h.domainError(c, err)
		return
	}

	stage := ds.PhotoStage(c.Query("stage"))
	photos := session.Photos
	if stage != "" {
		photos = session.PhotosByStage(stage)
	}

	resp := make([]interface{}, 0, len(photos))
	for i := range photos {
		resp = append(resp, toPhotoResponse(&photos[i]))
	}
	h.successResponse(c, http.StatusOK, "", resp)
}
