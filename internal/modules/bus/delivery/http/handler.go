package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"nub.ac.bd/transport/internal/modules/bus/dto"
	bus "nub.ac.bd/transport/internal/modules/bus/service"
	"nub.ac.bd/transport/pkg/response"
	"nub.ac.bd/transport/pkg/validator"
)

type BusHandler struct {
	service bus.BusService
}

func NewBusHandler(service bus.BusService) *BusHandler {
	return &BusHandler{service: service}
}

func (h *BusHandler) GetAllBuses(c *gin.Context) {
	var filter dto.BusFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	buses, total, err := h.service.GetAllBuses(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	page := filter.Pagination.Normalize()
	response.List(c, response.NewDataList(buses, total, page.Page, page.Limit))
}

func (h *BusHandler) GetBusByID(c *gin.Context) {
	id, err := response.ParamID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	b, err := h.service.GetBusByID(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Data(c, http.StatusOK, b)
}

func (h *BusHandler) CreateBus(c *gin.Context) {
	var req dto.CreateBusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	b, err := h.service.CreateBus(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Data(c, http.StatusCreated, b)
}

func (h *BusHandler) UpdateBus(c *gin.Context) {
	id, err := response.ParamID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateBusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	b, err := h.service.UpdateBus(c.Request.Context(), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Data(c, http.StatusOK, b)
}

func (h *BusHandler) DeleteBus(c *gin.Context) {
	id, err := response.ParamID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteBus(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Data(c, http.StatusOK, gin.H{"message": "bus deleted successfully"})
}

func (h *BusHandler) UpdateOffDays(c *gin.Context) {
	id, err := response.ParamID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateOffDaysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	b, err := h.service.UpdateBusOffDays(c.Request.Context(), id, req.OffDays)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Data(c, http.StatusOK, b)
}

func (h *BusHandler) AssignManager(c *gin.Context) {
	var req dto.AssignManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	manager, err := h.service.AssignManager(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Data(c, http.StatusCreated, manager)
}

func (h *BusHandler) UnassignManager(c *gin.Context) {
	id, err := response.ParamID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	manager, err := h.service.UnassignManager(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Data(c, http.StatusOK, manager)
}

func (h *BusHandler) GetBusManagers(c *gin.Context) {
	id, err := response.ParamID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	managers, err := h.service.GetBusManagers(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.All(c, managers)
}
