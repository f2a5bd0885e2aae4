// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"essay-duet-api/internal/application/collab"
	"essay-duet-api/internal/interfaces/http/dto"
	"essay-duet-api/internal/interfaces/http/middleware"
)

// EssayHandler 文章处理器
type EssayHandler struct {
	svc *collab.Service
}

// NewEssayHandler 创建文章处理器
func NewEssayHandler(svc *collab.Service) *EssayHandler {
	return &EssayHandler{svc: svc}
}

// Create 创建文章
// @Summary 创建协作文章
// @Description 创建一篇新文章并等待创建者提交开篇
// @Tags Essays
// @Accept json
// @Produce json
// @Param body body dto.CreateEssayRequest true "创建文章请求"
// @Success 201 {object} dto.Response[dto.EssayResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/essays [post]
func (h *EssayHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)

	var req dto.CreateEssayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	essay, err := h.svc.Create(ctx, userID, req.UserName, req.Topic, req.Anonymous)
	if err != nil {
		dto.FromAppError(c, err)
		return
	}
	dto.Created(c, dto.NewEssayResponse(essay, userID, h.svc.YourTurn(essay, userID)))
}

// SubmitOpening 提交开篇
// @Summary 提交开篇内容
// @Description 创建者提交开篇，文章进入等待搭档状态
// @Tags Essays
// @Accept json
// @Produce json
// @Param eid path string true "文章 ID"
// @Param body body dto.SubmitOpeningRequest true "开篇内容"
// @Success 200 {object} dto.Response[dto.EssayResponse]
// @Failure 409 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /v1/essays/{eid}/opening [post]
func (h *EssayHandler) SubmitOpening(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)
	essayID := c.Param("eid")

	var req dto.SubmitOpeningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	essay, err := h.svc.SubmitOpening(ctx, userID, essayID, req.Text)
	if err != nil {
		dto.FromAppError(c, err)
		return
	}
	dto.Success(c, dto.NewEssayResponse(essay, userID, h.svc.YourTurn(essay, userID)))
}

// Join 加入文章
// @Summary 加入一篇等待搭档的文章
// @Tags Essays
// @Accept json
// @Produce json
// @Param eid path string true "文章 ID"
// @Param body body dto.JoinEssayRequest true "加入请求"
// @Success 200 {object} dto.Response[dto.EssayResponse]
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/essays/{eid}/join [post]
func (h *EssayHandler) Join(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)
	essayID := c.Param("eid")

	var req dto.JoinEssayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	essay, err := h.svc.Join(ctx, userID, req.UserName, essayID, req.Anonymous)
	if err != nil {
		dto.FromAppError(c, err)
		return
	}
	dto.Success(c, dto.NewEssayResponse(essay, userID, h.svc.YourTurn(essay, userID)))
}

// Get 查询文章详情
// @Summary 查询文章详情
// @Description 仅参与方可见，匿名参与者对对方显示占位名
// @Tags Essays
// @Produce json
// @Param eid path string true "文章 ID"
// @Success 200 {object} dto.Response[dto.EssayResponse]
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/essays/{eid} [get]
func (h *EssayHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)

	essay, err := h.svc.Get(ctx, userID, c.Param("eid"))
	if err != nil {
		dto.FromAppError(c, err)
		return
	}
	dto.Success(c, dto.NewEssayResponse(essay, userID, h.svc.YourTurn(essay, userID)))
}

// ListCreated 查询自己创建的文章
// @Summary 查询自己创建的文章
// @Tags Essays
// @Produce json
// @Success 200 {object} dto.Response[[]dto.EssaySummaryResponse]
// @Router /v1/essays/mine/created [get]
func (h *EssayHandler) ListCreated(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)

	essays, err := h.svc.ListCreated(ctx, userID)
	if err != nil {
		dto.FromAppError(c, err)
		return
	}
	dto.Success(c, dto.NewEssaySummaryList(essays, userID, h.svc.YourTurn))
}

// ListJoined 查询自己参与的文章
// @Summary 查询自己作为搭档参与的文章
// @Tags Essays
// @Produce json
// @Success 200 {object} dto.Response[[]dto.EssaySummaryResponse]
// @Router /v1/essays/mine/joined [get]
func (h *EssayHandler) ListJoined(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)

	essays, err := h.svc.ListJoined(ctx, userID)
	if err != nil {
		dto.FromAppError(c, err)
		return
	}
	dto.Success(c, dto.NewEssaySummaryList(essays, userID, h.svc.YourTurn))
}

// ListAvailable 查询可加入的文章
// @Summary 查询等待搭档的文章
// @Description 排除调用者自己创建的文章
// @Tags Essays
// @Produce json
// @Success 200 {object} dto.Response[[]dto.EssaySummaryResponse]
// @Router /v1/essays/available [get]
func (h *EssayHandler) ListAvailable(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)

	essays, err := h.svc.ListAvailable(ctx, userID)
	if err != nil {
		dto.FromAppError(c, err)
		return
	}
	dto.Success(c, dto.NewEssaySummaryList(essays, userID, h.svc.YourTurn))
}

// Export 重新导出文章
// @Summary 重新导出已完成的文章
// @Description 完成时导出失败的文章可在此重试
// @Tags Essays
// @Produce json
// @Param eid path string true "文章 ID"
// @Success 200 {object} dto.Response[dto.ExportResponse]
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/essays/{eid}/export [post]
func (h *EssayHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)

	essay, err := h.svc.Export(ctx, userID, c.Param("eid"))
	if err != nil {
		dto.FromAppError(c, err)
		return
	}
	dto.Success(c, dto.ExportResponse{
		EssayID:      essay.ID,
		ArtifactPath: essay.ArtifactPath,
	})
}
