package acceptance_test

import (
	"archive/zip"
	"bytes"
	"context"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sort"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kpauljoseph/pdf2cbz/internal/convert"
	"github.com/kpauljoseph/pdf2cbz/internal/inspect"
	"github.com/kpauljoseph/pdf2cbz/internal/pdf"
	"github.com/kpauljoseph/pdf2cbz/pkg/logger"
	"github.com/kpauljoseph/pdf2cbz/pkg/models"
	"github.com/kpauljoseph/pdf2cbz/tests/acceptance"
)

func acceptanceLogger() *logger.Logger {
	log := logger.New(
		logger.WithOutput(GinkgoWriter),
		logger.WithPrefix("[acceptance] "),
		logger.WithFlags(0),
	)
	log.SetVerbose(true)
	return log
}

var _ = Describe("PDF to CBZ End-to-End", func() {
	var (
		tempDir string
		pdfPath string
		cbzPath string
		ctx     context.Context
	)

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "pdf2cbz-acceptance-*")
		Expect(err).NotTo(HaveOccurred())

		pdfPath = filepath.Join(tempDir, "book.pdf")
		cbzPath = filepath.Join(tempDir, "book.cbz")
		ctx = context.Background()
	})

	AfterEach(func() {
		os.RemoveAll(tempDir)
	})

	Context("converting a real document", func() {
		It("should produce a CBZ with one entry per page at the target height", func() {
			Expect(acceptance.WriteTestPDF(pdfPath, acceptance.UniformSizes(5, 200, 300))).To(Succeed())

			summary, err := convert.Run(ctx, pdfPath, cbzPath,
				convert.Options{TargetHeight: 600}, acceptanceLogger())
			Expect(err).NotTo(HaveOccurred())

			Expect(summary.TotalPages).To(Equal(5))
			Expect(summary.FailedCount()).To(BeZero())

			reader, err := zip.OpenReader(cbzPath)
			Expect(err).NotTo(HaveOccurred())
			defer reader.Close()

			Expect(reader.File).To(HaveLen(5))

			var names []string
			for _, entry := range reader.File {
				names = append(names, entry.Name)

				rc, err := entry.Open()
				Expect(err).NotTo(HaveOccurred())
				var buf bytes.Buffer
				_, err = buf.ReadFrom(rc)
				rc.Close()
				Expect(err).NotTo(HaveOccurred())

				cfg, err := jpeg.DecodeConfig(bytes.NewReader(buf.Bytes()))
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Height).To(Equal(600))
				Expect(cfg.Width).To(Equal(400))
			}

			Expect(sort.StringsAreSorted(names)).To(BeTrue())
			Expect(names[0]).To(Equal("0000.jpg"))
			Expect(names[4]).To(Equal("0004.jpg"))
		})

		It("should honor PNG output and a page limit", func() {
			Expect(acceptance.WriteTestPDF(pdfPath, acceptance.UniformSizes(6, 200, 300))).To(Succeed())

			summary, err := convert.Run(ctx, pdfPath, cbzPath, convert.Options{
				TargetHeight: 150,
				Format:       models.FormatPNG,
				PageLimit:    2,
			}, acceptanceLogger())
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.TotalPages).To(Equal(2))

			reader, err := zip.OpenReader(cbzPath)
			Expect(err).NotTo(HaveOccurred())
			defer reader.Close()

			Expect(reader.File).To(HaveLen(2))
			Expect(reader.File[0].Name).To(Equal("0000.png"))

			rc, err := reader.File[0].Open()
			Expect(err).NotTo(HaveOccurred())
			defer rc.Close()
			cfg, err := png.DecodeConfig(rc)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Height).To(Equal(150))
		})

		It("should keep native dimensions when no height is given", func() {
			Expect(acceptance.WriteTestPDF(pdfPath, acceptance.UniformSizes(2, 200, 300))).To(Succeed())

			_, err := convert.Run(ctx, pdfPath, cbzPath, convert.Options{}, acceptanceLogger())
			Expect(err).NotTo(HaveOccurred())

			reader, err := zip.OpenReader(cbzPath)
			Expect(err).NotTo(HaveOccurred())
			defer reader.Close()

			rc, err := reader.File[0].Open()
			Expect(err).NotTo(HaveOccurred())
			defer rc.Close()
			cfg, err := jpeg.DecodeConfig(rc)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Width).To(Equal(200))
			Expect(cfg.Height).To(Equal(300))
		})

		It("should fail with a source error for a broken file", func() {
			Expect(os.WriteFile(pdfPath, []byte("not a pdf"), 0644)).To(Succeed())

			_, err := convert.Run(ctx, pdfPath, cbzPath,
				convert.Options{TargetHeight: 600}, acceptanceLogger())

			Expect(err).To(MatchError(convert.ErrSourceUnavailable))
			_, statErr := os.Stat(cbzPath)
			Expect(os.IsNotExist(statErr)).To(BeTrue())
		})
	})

	Context("inspecting a real document", func() {
		It("should report page count and representative size", func() {
			sizes := acceptance.UniformSizes(11, 455, 587)
			sizes = append(sizes, [2]float64{1200, 1800}) // oversized cover
			Expect(acceptance.WriteTestPDF(pdfPath, sizes)).To(Succeed())

			doc, err := pdf.Open(pdfPath)
			Expect(err).NotTo(HaveOccurred())
			defer doc.Close()

			Expect(doc.PageCount()).To(Equal(12))

			widths := make([]float64, 0, 12)
			heights := make([]float64, 0, 12)
			for i := 0; i < doc.PageCount(); i++ {
				w, h, err := doc.PageSize(i)
				Expect(err).NotTo(HaveOccurred())
				widths = append(widths, w)
				heights = append(heights, h)
			}

			report := inspect.Summarize(widths, heights)
			Expect(report.AvgWidth).To(BeNumerically("~", 455, 1))
			Expect(report.AvgHeight).To(BeNumerically("~", 587, 1))
		})
	})
})
