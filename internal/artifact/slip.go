package artifact

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/zeroshade/sgvdesk/types"
)

const (
	slipHeight = 70
	slipWidth  = 205
	left       = 5
	slipColor  = "1B365D"
)

func drawSlip(f *gofpdf.Fpdf, rec *types.CombineRecord, title, qrname string) {
	var opt gofpdf.ImageOptions
	opt.ImageType = "png"

	_, _, mtop, _ := f.GetMargins()
	starty := f.GetY() - mtop + 10

	colorBytes, _ := hex.DecodeString(slipColor)
	red, green, blue := int(colorBytes[0]), int(colorBytes[1]), int(colorBytes[2])

	f.SetFillColor(red, green, blue)
	f.SetDrawColor(red, green, blue)
	f.Rect(left, starty, slipWidth, slipHeight, "D")
	f.SetX(left)
	f.SetFont("Courier", "B", 18)
	f.SetTextColor(255, 255, 255)
	f.CellFormat(slipWidth, 7, title, "B", 1, "C", true, 0, "")

	f.SetTextColor(0, 0, 0)
	f.SetFont("Courier", "B", 16)
	f.SetX(left)
	f.Cell(40, 7, rec.NewSerial)

	row := func(label, value string) {
		f.Ln(-1)
		f.SetX(left)
		f.SetFont("Courier", "B", 12)
		f.Cell(40, 7, label)
		f.SetFont("Courier", "", 12)
		f.Cell(110, 7, value)
	}
	row("Passenger:", rec.Passenger)
	row("Total:", types.FormatMoney(rec.Total))
	row("Issued:", rec.CreatedAt.UTC().Format(types.TimestampLayout))
	row("Sources:", strings.Join(rec.Sources, ", "))

	f.Ln(12)
	f.SetX(left)
	f.SetFont("Courier", "I", 8)
	f.Cell(40, 8, qrname)

	f.ImageOptions(qrname, slipWidth-40, starty+12, 40, 0, false, opt, 0, "")
	f.SetXY(0, starty+slipHeight+10)
}

// WriteSlip renders a printable PDF slip for a combined voucher with its
// QR code embedded.
func WriteSlip(w io.Writer, rec *types.CombineRecord, title string) error {
	var opt gofpdf.ImageOptions
	opt.ImageType = "png"

	content, err := json.Marshal(PayloadFor(rec))
	if err != nil {
		return err
	}
	data, err := qrcode.Encode(string(content), qrcode.Medium, 256)
	if err != nil {
		return err
	}

	pdf := gofpdf.New("P", "mm", "Letter", ".")
	pdf.SetTitle(title+" "+rec.NewSerial, false)
	pdf.AddPage()

	qrname := "SGV_" + rec.NewSerial
	pdf.RegisterImageOptionsReader(qrname, opt, bytes.NewReader(data))
	drawSlip(pdf, rec, title, qrname)

	return pdf.Output(w)
}
