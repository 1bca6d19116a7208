package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aerium/internal/service"
)

// overrideReq элемент modifiedBones; оба поля опциональны — неполные записи
// сервис молча отбрасывает
type overrideReq struct {
	BoneID    *int64  `json:"boneId"`
	ModDetail *string `json:"modDetail"`
}

func toOverrideInputs(reqs []overrideReq) []service.OverrideInput {
	out := make([]service.OverrideInput, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, service.OverrideInput{BoneID: r.BoneID, ModDetail: r.ModDetail})
	}
	return out
}

type createConfigurationReq struct {
	// userId принимается для совместимости со старым клиентом и игнорируется:
	// владельцем всегда становится аутентифицированный пользователь
	UserID        *int64        `json:"userId"`
	ModifiedBones []overrideReq `json:"modifiedBones"`
	ShareStatus   bool          `json:"shareStatus"`
}

// @Summary Save a bone override configuration
// @Tags configurations
// @Accept json
// @Produce json
// @Param input body createConfigurationReq true "Configuration"
// @Success 201 {object} domain.ModifiedBoneGroup
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /configurations [post]
func (s *Server) createConfiguration(c *gin.Context) {
	var req createConfigurationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	g, err := s.configs.CreateGroup(c, requester(c), req.ShareStatus, toOverrideInputs(req.ModifiedBones))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

// @Summary Get configuration by id
// @Tags configurations
// @Produce json
// @Param id path int true "Configuration ID"
// @Success 200 {object} domain.ModifiedBoneGroup
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /configurations/{id} [get]
func (s *Server) getConfiguration(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	g, err := s.configs.GetGroup(c, id, requester(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// @Summary List own configurations, newest first
// @Tags configurations
// @Produce json
// @Success 200 {array} domain.ModifiedBoneGroup
// @Security BearerAuth
// @Router /configurations [get]
func (s *Server) listConfigurations(c *gin.Context) {
	req := requester(c)
	list, err := s.configs.ListGroups(c, req.ID, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type updateConfigurationReq struct {
	ShareStatus   *bool         `json:"shareStatus"`
	ModifiedBones []overrideReq `json:"modifiedBones"`
}

// @Summary Update configuration: share status and/or full override replacement
// @Tags configurations
// @Accept json
// @Produce json
// @Param id path int true "Configuration ID"
// @Param input body updateConfigurationReq true "Update"
// @Success 200 {object} domain.ModifiedBoneGroup
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /configurations/{id} [put]
func (s *Server) updateConfiguration(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req updateConfigurationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	g, err := s.configs.UpdateGroup(c, id, requester(c), service.GroupUpdate{
		ShareStatus: req.ShareStatus,
		Overrides:   toOverrideInputs(req.ModifiedBones),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}
