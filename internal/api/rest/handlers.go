package rest

import (
	"context"
	"errors"
	"image"
	// Register decoders for camera frames.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"

	domain "github.com/oshokin/home-security/internal/domain/security"
	"github.com/oshokin/home-security/internal/logger"
	imagesvc "github.com/oshokin/home-security/internal/service/image"
	engine "github.com/oshokin/home-security/internal/service/security"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// sensorResponse is the JSON form of a sensor.
type sensorResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Active bool   `json:"active"`
}

// statusResponse is the JSON form of the engine state.
type statusResponse struct {
	AlarmStatus     string           `json:"alarm_status"`
	ArmingStatus    string           `json:"arming_status"`
	AnySensorActive bool             `json:"any_sensor_active"`
	CatDetected     bool             `json:"cat_detected"`
	Sensors         []sensorResponse `json:"sensors"`
}

// armingRequest is the body of PUT /api/v1/arming.
type armingRequest struct {
	ArmingStatus string `json:"arming_status" binding:"required"`
}

// sensorStateRequest is the body of PUT /api/v1/sensors/:id/state.
type sensorStateRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func (r *Router) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (r *Router) getStatus(c *gin.Context) {
	r.respondStatus(c, http.StatusOK)
}

func (r *Router) getSensors(c *gin.Context) {
	sensors, err := r.service.GetSensors(c.Request.Context())
	if err != nil {
		abortWithError(c, "list sensors", err)

		return
	}

	c.JSON(http.StatusOK, toSensorResponses(sensors))
}

func (r *Router) putArming(c *gin.Context) {
	var request armingRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})

		return
	}

	arming, err := domain.ParseArmingStatus(request.ArmingStatus)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})

		return
	}

	if err = r.service.SetArmingStatus(c.Request.Context(), arming); err != nil {
		abortWithError(c, "set arming status", err)

		return
	}

	r.respondStatus(c, http.StatusOK)
}

func (r *Router) putSensorState(c *gin.Context) {
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "invalid sensor id"})

		return
	}

	var request sensorStateRequest
	if err = c.ShouldBindJSON(&request); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})

		return
	}

	ctx := c.Request.Context()

	sensor, err := r.service.GetSensor(ctx, id)
	if err != nil {
		abortWithError(c, "get sensor", err)

		return
	}

	if err = r.service.ChangeSensorActivationStatus(ctx, sensor, *request.Active); err != nil {
		abortWithError(c, "change sensor activation", err)

		return
	}

	r.respondStatus(c, http.StatusOK)
}

func (r *Router) postImage(c *gin.Context) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, MaxImageSize)

	img, _, err := image.Decode(body)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "unable to decode image"})

		return
	}

	if err = r.service.ProcessImage(c.Request.Context(), img); err != nil {
		abortWithError(c, "process image", err)

		return
	}

	r.respondStatus(c, http.StatusOK)
}

// respondStatus writes the current engine state.
func (r *Router) respondStatus(c *gin.Context, code int) {
	state, err := r.service.Status(c.Request.Context())
	if err != nil {
		abortWithError(c, "get status", err)

		return
	}

	c.JSON(code, statusResponse{
		AlarmStatus:     state.Alarm.String(),
		ArmingStatus:    state.Arming.String(),
		AnySensorActive: state.AnySensorActive,
		CatDetected:     state.CatDetected,
		Sensors:         toSensorResponses(state.Sensors),
	})
}

// abortWithError maps engine errors to HTTP status codes.
func abortWithError(c *gin.Context, action string, err error) {
	switch {
	case errors.Is(err, engine.ErrSensorNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, engine.ErrSensorRequired),
		errors.Is(err, engine.ErrInvalidSensor),
		errors.Is(err, engine.ErrInvalidArmingStatus),
		errors.Is(err, imagesvc.ErrImageRequired):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		c.AbortWithStatusJSON(http.StatusGatewayTimeout, errorResponse{Error: "timeout"})
	default:
		logger.ErrorKV(c.Request.Context(), "Request failed", "action", action, "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: "unable to " + action})
	}
}

func toSensorResponses(sensors []*domain.Sensor) []sensorResponse {
	result := make([]sensorResponse, 0, len(sensors))
	for _, sensor := range sensors {
		result = append(result, sensorResponse{
			ID:     sensor.ID.String(),
			Name:   sensor.Name,
			Type:   sensor.Type.String(),
			Active: sensor.Active,
		})
	}

	return result
}
