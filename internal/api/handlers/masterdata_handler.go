package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/drive"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/ingest"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

// maxUploadBytes caps an imported workbook.
const maxUploadBytes = 16 << 20

type MasterDataHandler struct {
	service *service.MasterDataService
}

func NewMasterDataHandler(service *service.MasterDataService) *MasterDataHandler {
	return &MasterDataHandler{service: service}
}

type idsRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

type valueRequest struct {
	Value string `json:"value"`
}

// GetMaterials returns the raw material master.
func (h *MasterDataHandler) GetMaterials(c *gin.Context) {
	materials, err := h.service.Materials(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to fetch materials")
		return
	}
	c.JSON(http.StatusOK, materials)
}

// ReplaceMaterials overwrites the whole raw material collection.
func (h *MasterDataHandler) ReplaceMaterials(c *gin.Context) {
	var materials []domain.RawMaterial
	if err := c.ShouldBindJSON(&materials); err != nil {
		bindError(c, err)
		return
	}
	if err := h.service.SaveMaterials(c.Request.Context(), materials); err != nil {
		respondError(c, err, "failed to save materials")
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": len(materials)})
}

func (h *MasterDataHandler) DeleteMaterials(c *gin.Context) {
	var req idsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	removed, err := h.service.DeleteMaterials(c.Request.Context(), req.IDs)
	if err != nil {
		respondError(c, err, "failed to delete materials")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": removed})
}

// GetProducts returns finish goods with their BOM reference cost.
func (h *MasterDataHandler) GetProducts(c *gin.Context) {
	products, err := h.service.Products(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to fetch products")
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *MasterDataHandler) ReplaceProducts(c *gin.Context) {
	var goods []domain.FinishGood
	if err := c.ShouldBindJSON(&goods); err != nil {
		bindError(c, err)
		return
	}
	if err := h.service.SaveProducts(c.Request.Context(), goods); err != nil {
		respondError(c, err, "failed to save products")
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": len(goods)})
}

func (h *MasterDataHandler) DeleteProducts(c *gin.Context) {
	var req idsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	removed, err := h.service.DeleteProducts(c.Request.Context(), req.IDs)
	if err != nil {
		respondError(c, err, "failed to delete products")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": removed})
}

// SetCapacity sets or clears a product's daily batch cap. A value that does
// not start with a number clears it.
func (h *MasterDataHandler) SetCapacity(c *gin.Context) {
	var req valueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	good, err := h.service.SetCapacity(c.Request.Context(), c.Param("sku"), req.Value)
	if err != nil {
		respondError(c, err, "failed to set capacity")
		return
	}
	c.JSON(http.StatusOK, good)
}

func (h *MasterDataHandler) ReplaceSales(c *gin.Context) {
	var sales []domain.SalesRecord
	if err := c.ShouldBindJSON(&sales); err != nil {
		bindError(c, err)
		return
	}
	if err := h.service.SaveSales(c.Request.Context(), sales); err != nil {
		respondError(c, err, "failed to save sales")
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": len(sales)})
}

func (h *MasterDataHandler) ImportMaterials(c *gin.Context) {
	h.importUpload(c, h.service.ImportMaterials)
}

func (h *MasterDataHandler) ImportProducts(c *gin.Context) {
	h.importUpload(c, h.service.ImportProducts)
}

func (h *MasterDataHandler) ImportSales(c *gin.Context) {
	h.importUpload(c, h.service.ImportSales)
}

// importUpload reads the "file" form field (CSV or XLSX) and feeds the rows
// of every sheet to fn.
func (h *MasterDataHandler) importUpload(c *gin.Context, fn func(context.Context, []ingest.Row) (service.ImportResult, error)) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required", "details": err.Error()})
		return
	}
	f, err := header.Open()
	if err != nil {
		respondError(c, err, "failed to open upload")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		respondError(c, err, "failed to read upload")
		return
	}
	sheets, err := drive.ReadFile(header.Filename, data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable workbook", "details": err.Error()})
		return
	}

	var rows []ingest.Row
	for _, sh := range sheets {
		rows = append(rows, sh.Rows...)
	}
	res, err := fn(c.Request.Context(), rows)
	if err != nil {
		respondError(c, err, "failed to import rows")
		return
	}
	c.JSON(http.StatusOK, res)
}
