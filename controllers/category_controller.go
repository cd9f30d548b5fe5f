package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"hotel-pms/services"
	"hotel-pms/utils"
)

type categoryRequest struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Description *string          `json:"description"`
}

func (r categoryRequest) input() services.CategoryInput {
	return services.CategoryInput{Name: r.Name, Price: r.Price, Description: r.Description}
}

type CategoryController struct {
	Svc *services.CategoryService
	Log *logrus.Logger
}

func NewCategoryController(svc *services.CategoryService, log *logrus.Logger) *CategoryController {
	return &CategoryController{Svc: svc, Log: log}
}

func (cc *CategoryController) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	cat, err := cc.Svc.Create(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, cc.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, cat)
}

func (cc *CategoryController) GetCategories(c *gin.Context) {
	list, err := cc.Svc.List(c.Request.Context())
	if err != nil {
		respondError(c, cc.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

func (cc *CategoryController) GetCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	cat, err := cc.Svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, cc.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, cat)
}

func (cc *CategoryController) UpdateCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	cat, err := cc.Svc.Update(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, cc.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, cat)
}

func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := cc.Svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, cc.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id})
}
