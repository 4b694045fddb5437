package controller

import (
	"fmt"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/tnqbao/gau-drs-provider/http/controller/dto"
	"github.com/tnqbao/gau-drs-provider/provider"
	"github.com/tnqbao/gau-drs-provider/utils"
)

// SubmitObject ingests a digital object posted as multipart form data.
func (ctrl *Controller) SubmitObject(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SubmitRequestDTO
	if err := c.ShouldBind(&req); err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Object] invalid submit form: %v", err)
		utils.JSON400(c, "Invalid request payload: "+err.Error())
		return
	}

	aliases, err := req.ParseAliases()
	if err != nil {
		utils.JSON400(c, err.Error())
		return
	}
	checksums, err := req.ParseChecksums()
	if err != nil {
		utils.JSON400(c, err.Error())
		return
	}

	fileHeader, err := c.FormFile("client_file")
	if err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Object] submit without client_file: %v", err)
		utils.JSON400(c, "Failed to get file: "+err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] failed to open uploaded file")
		utils.JSON500(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	record, err := ctrl.Provider.Ingest.Submit(ctx, provider.SubmitParams{
		SubmitterID:       req.SubmitterID,
		RequestedObjectID: req.RequestedObjectID,
		Filename:          fileHeader.Filename,
		Description:       req.Description,
		Version:           req.Version,
		Aliases:           aliases,
		Checksums:         checksums,
		DataType:          req.DataType,
		FileType:          req.FileType,
	}, file)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] submission failed for submitter %s", req.SubmitterID)
		respondError(c, err)
		return
	}

	utils.JSON200(c, record)
}

// GetObject returns DRS metadata for one object.
func (ctrl *Controller) GetObject(c *gin.Context) {
	ctx := c.Request.Context()

	objectID := c.Param("object_id")
	if objectID == "" {
		utils.JSON400(c, "object_id is required")
		return
	}

	view, err := ctrl.Provider.Retrieve.Get(ctx, objectID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.JSON200(c, view)
}

// GetObjectAccess returns the URL behind one of the object's access
// methods. Only methods back-filled by the mirror worker exist; there is
// no URL signing here.
func (ctrl *Controller) GetObjectAccess(c *gin.Context) {
	ctx := c.Request.Context()

	objectID := c.Param("object_id")
	accessID := c.Param("access_id")

	view, err := ctrl.Provider.Retrieve.Get(ctx, objectID)
	if err != nil {
		respondError(c, err)
		return
	}

	for _, method := range view.AccessMethods {
		if method.AccessID == accessID {
			utils.JSON200(c, gin.H{
				"url":     method.AccessURL.URL,
				"headers": method.AccessURL.Headers,
			})
			return
		}
	}

	utils.JSON404(c, fmt.Sprintf("no access method %s for object %s", accessID, objectID))
}

// SearchObjects lists the object ids owned by one submitter. An empty list
// is a valid result.
func (ctrl *Controller) SearchObjects(c *gin.Context) {
	ctx := c.Request.Context()

	submitterID := c.Param("submitter_id")
	if submitterID == "" {
		utils.JSON400(c, "submitter_id is required")
		return
	}

	ids, err := ctrl.Provider.Retrieve.Search(ctx, submitterID)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]gin.H, 0, len(ids))
	for _, id := range ids {
		results = append(results, gin.H{"object_id": id})
	}
	utils.JSON200(c, results)
}

// ListAllObjects is the admin surface for debugging database
// inconsistencies: every object id, regardless of submitter.
func (ctrl *Controller) ListAllObjects(c *gin.Context) {
	ctx := c.Request.Context()

	ids, err := ctrl.Provider.Retrieve.ListAll(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]gin.H, 0, len(ids))
	for _, id := range ids {
		results = append(results, gin.H{"object_id": id})
	}
	utils.JSON200(c, results)
}

// StreamObject serves the stored payload bytes with the record's MIME type
// and original filename.
func (ctrl *Controller) StreamObject(c *gin.Context) {
	ctx := c.Request.Context()

	objectID := c.Param("object_id")
	if objectID == "" {
		utils.JSON400(c, "object_id is required")
		return
	}

	result, err := ctrl.Provider.Retrieve.Stream(ctx, objectID)
	if err != nil {
		respondError(c, err)
		return
	}
	defer result.Reader.Close()

	c.Header("Content-Disposition", "attachment; filename="+result.Filename)
	c.Header("Content-Type", result.MimeType)
	c.Status(200)

	if _, err := io.Copy(c.Writer, result.Reader); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] streaming %s aborted", objectID)
	}
}

// DeleteObject removes the record and the payload directory, returning the
// merged deletion report. Disk removal runs even when the record is absent
// so erroneous system states can be corrected manually.
func (ctrl *Controller) DeleteObject(c *gin.Context) {
	ctx := c.Request.Context()

	objectID := c.Param("object_id")
	if objectID == "" {
		utils.JSON400(c, "object_id is required")
		return
	}

	report := ctrl.Provider.Delete.Delete(ctx, objectID)
	if report.Status != provider.DeleteStatusDeleted {
		c.JSON(404, report)
		return
	}

	utils.JSON200(c, report)
}
