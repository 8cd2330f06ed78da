package main

import (
	"bytes"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/zeroshade/sgvdesk/internal/artifact"
	"github.com/zeroshade/sgvdesk/internal/config"
	"github.com/zeroshade/sgvdesk/internal/ledger"
	"github.com/zeroshade/sgvdesk/internal/monitoring"
	"github.com/zeroshade/sgvdesk/types"
)

type voucherRow struct {
	types.Voucher
	Selected bool `json:"selected"`
}

type recordView struct {
	*types.CombineRecord
	Label string `json:"label"`
}

func viewRecords(recs []*types.CombineRecord) []recordView {
	out := make([]recordView, 0, len(recs))
	for _, r := range recs {
		out = append(out, recordView{CombineRecord: r, Label: r.Label()})
	}
	return out
}

// ledgerStatus maps ledger errors onto HTTP statuses.
func ledgerStatus(err error) int {
	switch {
	case errors.Is(err, ledger.ErrAmbiguousRevert):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrUnknownVoucher), errors.Is(err, ledger.ErrNoCombineRecord):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrTooFewVouchers), errors.Is(err, ledger.ErrCrossPassenger),
		errors.Is(err, ledger.ErrNotActive):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func outcome(status int) string {
	switch {
	case status < 300:
		return "ok"
	case status < 500:
		return "rejected"
	default:
		return "error"
	}
}

func GetPassengers() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := lockSession(c)
		if !ok {
			return
		}
		defer sess.Unlock()

		pax, err := sess.Book().Table().Passengers()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"passengers": pax})
	}
}

func GetVouchers() gin.HandlerFunc {
	return func(c *gin.Context) {
		activeOnly := true
		if v, ok := c.GetQuery("active"); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "active must be true or false"})
				return
			}
			activeOnly = b
		}

		sess, ok := lockSession(c)
		if !ok {
			return
		}
		defer sess.Unlock()

		table := sess.Book().Table()
		passenger := c.Query("passenger")
		if passenger == "" {
			pax, err := table.Passengers()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			if len(pax) > 0 {
				passenger = pax[0]
			}
		}

		vouchers, err := table.ForPassenger(passenger, activeOnly)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		picked := make(map[string]bool)
		for _, s := range sess.Picked() {
			picked[s] = true
		}
		rows := make([]voucherRow, 0, len(vouchers))
		for _, v := range vouchers {
			rows = append(rows, voucherRow{Voucher: v, Selected: picked[v.Serial]})
		}

		summary, err := sess.Summary(passenger)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"passenger":  passenger,
			"activeOnly": activeOnly,
			"vouchers":   rows,
			"summary":    summary,
		})
	}
}

func UploadVouchers() gin.HandlerFunc {
	return func(c *gin.Context) {
		fh, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		defer f.Close()

		rows, err := ledger.ReadCSV(f)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		sess, ok := lockSession(c)
		if !ok {
			return
		}
		defer sess.Unlock()

		if err := sess.Upload(rows); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		sess.Logger().Info("vouchers uploaded", "file", fh.Filename, "rows", len(rows))
		c.JSON(http.StatusOK, gin.H{"loaded": len(rows)})
	}
}

type selectionRequest struct {
	Passenger string   `json:"passenger"`
	Visible   []string `json:"visible"`
	Checked   []string `json:"checked"`
}

func PutSelection() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req selectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		sess, ok := lockSession(c)
		if !ok {
			return
		}
		defer sess.Unlock()

		sess.ApplySelection(req.Visible, req.Checked)
		summary, err := sess.Summary(req.Passenger)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"picked": sess.Picked(), "summary": summary})
	}
}

func ClearSelection() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := lockSession(c)
		if !ok {
			return
		}
		defer sess.Unlock()

		sess.ClearSelection()
		c.Status(http.StatusNoContent)
	}
}

func GetSelection() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := lockSession(c)
		if !ok {
			return
		}
		defer sess.Unlock()

		summary, err := sess.Summary(c.Query("passenger"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"picked": sess.Picked(), "summary": summary})
	}
}

type combineRequest struct {
	Passenger string `json:"passenger" binding:"required"`
	Confirm   bool   `json:"confirm"`
}

func CombineVouchers() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req combineRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !req.Confirm {
			c.JSON(http.StatusBadRequest, gin.H{"error": "combine must be confirmed"})
			return
		}

		sess, ok := lockSession(c)
		if !ok {
			return
		}
		defer sess.Unlock()

		rec, err := sess.Combine(req.Passenger)
		if err != nil {
			status := ledgerStatus(err)
			monitoring.TrackLedgerOperation("combine", outcome(status))
			sess.Logger().Warn("combine refused", "passenger", req.Passenger, "error", err)
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		monitoring.TrackLedgerOperation("combine", "ok")
		monitoring.TrackCombineSize(len(rec.Sources))
		c.JSON(http.StatusCreated, gin.H{"record": recordView{CombineRecord: rec, Label: rec.Label()}})
	}
}

func GetCombines() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := lockSession(c)
		if !ok {
			return
		}
		defer sess.Unlock()

		c.JSON(http.StatusOK, gin.H{"records": viewRecords(sess.Book().Records(c.Query("passenger")))})
	}
}

type revertRequest struct {
	Passenger string `json:"passenger" binding:"required"`
	RecordID  string `json:"recordId"`
	Confirm   bool   `json:"confirm"`
}

func RevertCombine() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req revertRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !req.Confirm {
			c.JSON(http.StatusBadRequest, gin.H{"error": "revert must be confirmed"})
			return
		}

		sess, ok := lockSession(c)
		if !ok {
			return
		}
		defer sess.Unlock()

		rec, err := sess.Revert(req.Passenger, req.RecordID)
		var amb *ledger.AmbiguousRevertError
		switch {
		case errors.As(err, &amb):
			monitoring.TrackLedgerOperation("revert", "ambiguous")
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "options": viewRecords(amb.Options)})
			return
		case err != nil:
			status := ledgerStatus(err)
			monitoring.TrackLedgerOperation("revert", outcome(status))
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		monitoring.TrackLedgerOperation("revert", "ok")
		c.JSON(http.StatusOK, gin.H{"reverted": recordView{CombineRecord: rec, Label: rec.Label()}})
	}
}

func GetArtifact() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := lockSession(c)
		if !ok {
			return
		}
		rec, ok := sess.Book().RecordBySerial(c.Param("serial"))
		sess.Unlock()

		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": ledger.ErrNoCombineRecord.Error()})
			return
		}
		if _, err := os.Stat(rec.ArtifactPath); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "artifact missing"})
			return
		}
		c.FileAttachment(rec.ArtifactPath, filepath.Base(rec.ArtifactPath))
	}
}

func GetSlip(title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := lockSession(c)
		if !ok {
			return
		}
		rec, ok := sess.Book().RecordBySerial(c.Param("serial"))
		sess.Unlock()

		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": ledger.ErrNoCombineRecord.Error()})
			return
		}

		var buf bytes.Buffer
		if err := artifact.WriteSlip(&buf, rec, title); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="SGV_`+rec.NewSerial+`.pdf"`)
		c.Data(http.StatusOK, "application/pdf", buf.Bytes())
	}
}

func addVoucherRoutes(router *gin.RouterGroup, cfg *config.Config) {
	router.GET("/vouchers", GetVouchers())
	router.GET("/vouchers/passengers", GetPassengers())
	router.POST("/vouchers/upload", UploadVouchers())
	router.GET("/vouchers/selection", GetSelection())
	router.PUT("/vouchers/selection", PutSelection())
	router.DELETE("/vouchers/selection", ClearSelection())
	router.POST("/vouchers/combine", CombineVouchers())
	router.GET("/vouchers/combines", GetCombines())
	router.POST("/vouchers/revert", RevertCombine())
	router.GET("/vouchers/:serial/artifact", GetArtifact())
	router.GET("/vouchers/:serial/slip", GetSlip(cfg.SlipTitle))
}
