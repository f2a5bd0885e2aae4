package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"essay-duet-api/internal/application/collab"
	"essay-duet-api/internal/interfaces/http/dto"
	"essay-duet-api/internal/interfaces/http/middleware"
	apperrors "essay-duet-api/pkg/errors"
)

// TurnHandler 回合与结束流程处理器
type TurnHandler struct {
	svc *collab.Service
}

// NewTurnHandler 创建回合处理器
func NewTurnHandler(svc *collab.Service) *TurnHandler {
	return &TurnHandler{svc: svc}
}

// Preview 预览回合
// @Summary 预览回合提交
// @Description 校验并暂存草稿，确认前不改变文章状态；
// @Description essay_id 缺省时按调用者当前会话路由
// @Tags Turns
// @Accept json
// @Produce json
// @Param body body dto.PreviewTurnRequest true "回合内容"
// @Success 200 {object} dto.Response[dto.DraftResponse]
// @Failure 409 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /v1/turns/preview [post]
func (h *TurnHandler) Preview(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)

	var req dto.PreviewTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	draft, err := h.svc.PreviewTurn(ctx, userID, req.EssayID, req.Text)
	if err != nil {
		dto.FromAppError(c, err)
		return
	}
	dto.Success(c, dto.NewDraftResponse(draft))
}

// Confirm 确认回合
// @Summary 确认暂存的回合草稿
// @Tags Turns
// @Accept json
// @Produce json
// @Param body body dto.ConfirmTurnRequest false "确认请求"
// @Success 200 {object} dto.Response[dto.EssayResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/turns/confirm [post]
func (h *TurnHandler) Confirm(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)

	var req dto.ConfirmTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	essay, err := h.svc.ConfirmTurn(ctx, userID, req.EssayID)
	if err != nil {
		dto.FromAppError(c, err)
		return
	}
	dto.Success(c, dto.NewEssayResponse(essay, userID, h.svc.YourTurn(essay, userID)))
}

// RequestFinish 发起或附议结束
// @Summary 发起或附议结束提议
// @Description 双方均同意后文章完成并同步导出；
// @Description 导出失败不影响完成状态，错误在响应中单独给出
// @Tags Turns
// @Produce json
// @Param eid path string true "文章 ID"
// @Success 200 {object} dto.Response[dto.FinishResponse]
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/essays/{eid}/finish/request [post]
func (h *TurnHandler) RequestFinish(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)

	essay, completed, err := h.svc.RequestFinish(ctx, userID, c.Param("eid"))
	if err != nil {
		var exportErr string
		// 导出失败时完成状态已落库，按成功响应返回并附带错误
		if essay != nil && apperrors.IsCode(err, apperrors.CodeExportFailed) {
			exportErr = apperrors.AsAppError(err).Message
			dto.Success(c, dto.FinishResponse{
				Essay:       dto.NewEssayResponse(essay, userID, false),
				Completed:   completed,
				ExportError: exportErr,
			})
			return
		}
		dto.FromAppError(c, err)
		return
	}
	dto.Success(c, dto.FinishResponse{
		Essay:     dto.NewEssayResponse(essay, userID, h.svc.YourTurn(essay, userID)),
		Completed: completed,
	})
}

// DeclineFinish 拒绝结束
// @Summary 拒绝结束提议
// @Description 清空全部结束投票，写作继续
// @Tags Turns
// @Produce json
// @Param eid path string true "文章 ID"
// @Success 200 {object} dto.Response[dto.EssayResponse]
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/essays/{eid}/finish/decline [post]
func (h *TurnHandler) DeclineFinish(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)

	essay, err := h.svc.DeclineFinish(ctx, userID, c.Param("eid"))
	if err != nil {
		dto.FromAppError(c, err)
		return
	}
	dto.Success(c, dto.NewEssayResponse(essay, userID, h.svc.YourTurn(essay, userID)))
}
