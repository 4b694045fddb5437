package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/tnqbao/gau-drs-provider/http/controller"
)

type Middlewares struct {
	CORSMiddleware     gin.HandlerFunc
	PassportMiddleware gin.HandlerFunc
}

func NewMiddlewares(ctrl *controller.Controller) (*Middlewares, error) {
	cors := CORSMiddleware(ctrl.Config.EnvConfig)
	passport := PassportMiddleware(ctrl.Infra.Logger)

	return &Middlewares{
		CORSMiddleware:     cors,
		PassportMiddleware: passport,
	}, nil
}
