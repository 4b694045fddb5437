package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/tnqbao/gau-drs-provider/http/controller"
	middlewares "github.com/tnqbao/gau-drs-provider/http/middleware"
)

func SetupRouter(ctrl *controller.Controller) *gin.Engine {
	r := gin.Default()
	middles, err := middlewares.NewMiddlewares(ctrl)
	if err != nil {
		panic(err)
	}

	r.Use(middles.CORSMiddleware)

	r.GET("/service-info", ctrl.ServiceInfo)

	r.POST("/submit", ctrl.SubmitObject)
	r.GET("/files/:object_id", ctrl.StreamObject)
	r.GET("/search/:submitter_id", ctrl.SearchObjects)
	r.DELETE("/delete/:object_id", ctrl.DeleteObject)

	// GA4GH DRS read surface. The POST variants accept a passport in the
	// form data; verification is stubbed upstream.
	objectRoutes := r.Group("/objects")
	{
		objectRoutes.GET("/:object_id", ctrl.GetObject)
		objectRoutes.POST("/:object_id", middles.PassportMiddleware, ctrl.GetObject)
		objectRoutes.GET("/:object_id/access/:access_id", ctrl.GetObjectAccess)
		objectRoutes.POST("/:object_id/access/:access_id", middles.PassportMiddleware, ctrl.GetObjectAccess)
	}

	adminRoutes := r.Group("/admin")
	{
		adminRoutes.POST("/objects", ctrl.ListAllObjects)
	}

	return r
}
