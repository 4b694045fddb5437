package controller

import (
	"github.com/gin-gonic/gin"

	"github.com/tnqbao/gau-drs-provider/utils"
)

const apiVersion = "1.0.0"

// ServiceInfo implements the GA4GH service-info document. A DRS service
// must carry type.group org.ga4gh and type.artifact drs per the TASC
// service-info type registry.
func (ctrl *Controller) ServiceInfo(c *gin.Context) {
	cfg := ctrl.Config.EnvConfig

	utils.JSON200(c, gin.H{
		"id":          "org.ga4gh.drs." + cfg.Grafana.ServiceName,
		"name":        "DRS upload provider",
		"description": "Serves data objects submitted by individuals according to the GA4GH DRS specification",
		"type": gin.H{
			"group":    "org.ga4gh",
			"artifact": "drs",
			"version":  apiVersion,
		},
		"organization": gin.H{
			"name": "gau cloud",
			"url":  "https://" + cfg.DRS.HostName,
		},
		"environment": cfg.Environment.Mode,
		"version":     apiVersion,
	})
}
