package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	config "github.com/prasetyadi/edu_registration/configs"
	"github.com/prasetyadi/edu_registration/ledger"
	"github.com/prasetyadi/edu_registration/models"
	"github.com/prasetyadi/edu_registration/utils"
)

// Document rendering runs after the payment transaction has committed.
// A rendering or upload failure is logged and the PDF can be regenerated
// later; it never touches the ledger.

type documentContext struct {
	Title          string
	DocumentNumber string
	StudentName    string
	ProgramName    string
	Label          string
	Amount         string
	DueDate        string
	IssuedDate     string
}

// GenerateInvoiceDocument renders the installment invoice PDF and
// uploads it. Amounts and due dates come from the same resolution the
// engine uses, so the printed document can never disagree with the
// ledger.
func GenerateInvoiceDocument(p models.Payment, entry models.PaymentInstallment) {
	plan := p.Registration.Program.InstallmentPlan
	amount := ledger.ResolveInstallmentAmount(&p, &entry, nil, plan, entry.Ordinal)
	due := ledger.ResolveInstallmentDueDate(&p, &entry, entry.Ordinal)

	ctx := documentContext{
		Title:       "INVOICE",
		StudentName: p.Registration.Student.FullName,
		ProgramName: p.Registration.Program.Name,
		Label:       fmt.Sprintf("Cicilan %d dari %d", entry.Ordinal, plan),
		Amount:      utils.FormatRupiah(amount),
		IssuedDate:  time.Now().Format("2 January 2006"),
	}
	if p.InvoiceNumber != nil {
		ctx.DocumentNumber = *p.InvoiceNumber
	}
	if due != nil {
		ctx.DueDate = due.Format("2 January 2006")
	}

	renderAndUpload("templates/invoice.html", ctx, p.ID)
}

// GenerateReceiptDocument renders the receipt for a settled installment
// or the final payoff.
func GenerateReceiptDocument(p models.Payment, entry models.PaymentInstallment) {
	plan := p.Registration.Program.InstallmentPlan
	amount := ledger.ResolveInstallmentAmount(&p, &entry, nil, plan, entry.Ordinal)

	ctx := documentContext{
		Title:       "KWITANSI",
		StudentName: p.Registration.Student.FullName,
		ProgramName: p.Registration.Program.Name,
		Label:       fmt.Sprintf("Pembayaran cicilan %d dari %d", entry.Ordinal, plan),
		Amount:      utils.FormatRupiah(amount),
		IssuedDate:  time.Now().Format("2 January 2006"),
	}
	if entry.ReceiptNumber != nil {
		ctx.DocumentNumber = *entry.ReceiptNumber
	} else if p.ReceiptNumber != nil {
		ctx.DocumentNumber = *p.ReceiptNumber
	}

	renderAndUpload("templates/receipt.html", ctx, p.ID)
}

func renderAndUpload(templatePath string, ctx documentContext, paymentID uuid.UUID) {
	html, err := renderDocumentHTML(templatePath, ctx)
	if err != nil {
		log.Printf("🔥 Failed to render document HTML: %v", err)
		return
	}

	pdfBytes, err := generatePDFFromHTML(html)
	if err != nil {
		log.Printf("🔥 Failed to generate PDF: %v", err)
		return
	}

	url, err := uploadToCloudinary(pdfBytes, paymentID.String())
	if err != nil {
		log.Printf("🔥 Failed to upload document to Cloudinary: %v", err)
		return
	}

	log.Printf("✅ Generated %s for payment %s: %s", ctx.Title, paymentID, url)
}

func renderDocumentHTML(templatePath string, data documentContext) (string, error) {
	tmpl, err := template.ParseFiles(templatePath)
	if err != nil {
		return "", err
	}
	var rendered bytes.Buffer
	if err := tmpl.Execute(&rendered, data); err != nil {
		return "", err
	}
	return rendered.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadToCloudinary(fileBytes []byte, paymentID string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("documents/%s_%s", paymentID, uuid.New().String()),
		Folder:       "edu_registration_documents",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
