package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Domenick1991/flightbooking/internal/apperr"
	"github.com/Domenick1991/flightbooking/internal/service/inventory"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// batchFileField is the multipart form field carrying the JSON array.
const batchFileField = "file"

type batchItemResult struct {
	Index    int               `json:"index"`
	FlightID string            `json:"flightId,omitempty"`
	Status   string            `json:"status,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
}

type batchResponse struct {
	Message      string            `json:"message,omitempty"`
	Total        int               `json:"total"`
	SuccessCount int               `json:"successCount"`
	FailureCount int               `json:"failureCount"`
	Results      []batchItemResult `json:"results"`
}

type FlightHandler struct {
	service inventory.InventoryUseCase
}

func NewFlightHandler(service inventory.InventoryUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.POST("/airline/inventory/add", h.add)
	router.POST("/airline/inventory/batch", h.addBatch)
}

func (h *FlightHandler) list(c *gin.Context) {
	flights, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flights)
}

func (h *FlightHandler) get(c *gin.Context) {
	flight, err := h.service.GetFlight(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) add(c *gin.Context) {
	var input inventory.AddFlightInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	flight, err := h.service.AddFlight(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, flight)
}

// addBatch adds every flight of an uploaded JSON array independently. The
// answer is 201 when all items were created and 207 otherwise.
func (h *FlightHandler) addBatch(c *gin.Context) {
	header, err := c.FormFile(batchFileField)
	if err != nil || header.Size == 0 {
		c.JSON(http.StatusBadRequest, batchResponse{Message: "File is required", Results: []batchItemResult{}})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, batchResponse{Message: "File is required", Results: []batchItemResult{}})
		return
	}
	defer file.Close()

	var inputs []inventory.AddFlightInput
	if err := json.NewDecoder(file).Decode(&inputs); err != nil {
		c.JSON(http.StatusBadRequest, batchResponse{Message: "Invalid JSON file format: " + err.Error(), Results: []batchItemResult{}})
		return
	}

	resp := batchResponse{Total: len(inputs), Results: make([]batchItemResult, 0, len(inputs))}
	for i, input := range inputs {
		item := batchItemResult{Index: i}
		if err := binding.Validator.ValidateStruct(input); err != nil {
			item.Errors = fieldErrors(err)
		} else if flight, err := h.service.AddFlight(c.Request.Context(), input); err != nil {
			item.Errors = map[string]string{"exception": apperr.Message(err)}
		} else {
			item.FlightID = flight.ID
			item.Status = "CREATED"
		}
		if item.Errors != nil {
			resp.FailureCount++
		} else {
			resp.SuccessCount++
		}
		resp.Results = append(resp.Results, item)
	}

	code := http.StatusCreated
	if resp.FailureCount > 0 {
		code = http.StatusMultiStatus
	}
	c.JSON(code, resp)
}

func fieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"exception": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = "failed on the '" + fe.ActualTag() + "' rule"
	}
	return out
}
