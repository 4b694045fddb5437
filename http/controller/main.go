package controller

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/tnqbao/gau-drs-provider/config"
	"github.com/tnqbao/gau-drs-provider/infra"
	"github.com/tnqbao/gau-drs-provider/provider"
	"github.com/tnqbao/gau-drs-provider/repository"
	"github.com/tnqbao/gau-drs-provider/utils"
)

type Controller struct {
	Config     *config.Config
	Infra      *infra.Infra
	Repository *repository.Repository
	Provider   *provider.Provider
}

func NewController(config *config.Config, infra *infra.Infra, repo *repository.Repository, prov *provider.Provider) *Controller {
	if repo == nil {
		panic("Failed to initialize Repository")
	}
	if prov == nil {
		panic("Failed to initialize Provider")
	}
	return &Controller{
		Config:     config,
		Infra:      infra,
		Repository: repo,
		Provider:   prov,
	}
}

// respondError maps the core's error taxonomy onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, provider.ErrNotFound):
		utils.JSON404(c, err.Error())
	case errors.Is(err, provider.ErrConflict):
		utils.JSON409(c, err.Error())
	case errors.Is(err, provider.ErrUnsupportedMediaType):
		utils.JSON415(c, err.Error())
	case errors.Is(err, provider.ErrInvalidContents):
		utils.JSON422(c, err.Error())
	default:
		utils.JSON500(c, err.Error())
	}
}
