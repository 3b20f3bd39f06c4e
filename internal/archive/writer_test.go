package archive_test

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kpauljoseph/pdf2cbz/internal/archive"
	"github.com/kpauljoseph/pdf2cbz/pkg/models"
)

func successPage(index int, format models.Format) models.RenderedPage {
	return models.RenderedPage{
		PageIndex: index,
		Data:      []byte(fmt.Sprintf("encoded-page-%d", index)),
		Format:    format,
		Outcome:   models.Success(),
	}
}

func failedPage(index int) models.RenderedPage {
	return models.RenderedPage{
		PageIndex: index,
		Format:    models.FormatJPEG,
		Outcome:   models.Outcome{Kind: models.FailureRender, Reason: "render failed"},
	}
}

func entryNames(path string) []string {
	reader, err := zip.OpenReader(path)
	Expect(err).NotTo(HaveOccurred())
	defer reader.Close()

	var names []string
	for _, entry := range reader.File {
		names = append(names, entry.Name)
	}
	return names
}

var _ = Describe("Archive Writer", func() {
	var (
		tempDir string
		cbzPath string
	)

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "pdf2cbz-archive-*")
		Expect(err).NotTo(HaveOccurred())
		cbzPath = filepath.Join(tempDir, "out.cbz")
	})

	AfterEach(func() {
		os.RemoveAll(tempDir)
	})

	Context("entry naming", func() {
		It("should name entries so lexical order equals page order", func() {
			writer, err := archive.NewWriter(cbzPath, 10)
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 10; i++ {
				Expect(writer.WriteNext(successPage(i, models.FormatJPEG))).To(Succeed())
			}
			Expect(writer.Close()).To(Succeed())

			names := entryNames(cbzPath)
			Expect(names).To(HaveLen(10))
			Expect(names[0]).To(Equal("0000.jpg"))
			Expect(names[9]).To(Equal("0009.jpg"))
			Expect(sort.StringsAreSorted(names)).To(BeTrue())
		})

		DescribeTable("padding width follows the page count",
			func(totalPages, index int, want string) {
				writer, err := archive.NewWriter(cbzPath, totalPages)
				Expect(err).NotTo(HaveOccurred())
				defer writer.Abort()

				for i := 0; i < index; i++ {
					Expect(writer.WriteNext(failedPage(i))).To(Succeed())
				}
				Expect(writer.WriteNext(successPage(index, models.FormatJPEG))).To(Succeed())
				Expect(writer.Close()).To(Succeed())

				Expect(entryNames(cbzPath)).To(ConsistOf(want))
			},
			Entry("small document", 10, 3, "0003.jpg"),
			Entry("9999 pages still fits four digits", 9999, 42, "0042.jpg"),
			Entry("10000 pages needs five", 10000, 42, "00042.jpg"),
		)

		It("should use the png extension for png pages", func() {
			writer, err := archive.NewWriter(cbzPath, 2)
			Expect(err).NotTo(HaveOccurred())

			Expect(writer.WriteNext(successPage(0, models.FormatPNG))).To(Succeed())
			Expect(writer.WriteNext(successPage(1, models.FormatPNG))).To(Succeed())
			Expect(writer.Close()).To(Succeed())

			Expect(entryNames(cbzPath)).To(Equal([]string{"0000.png", "0001.png"}))
		})

		It("should store entries uncompressed", func() {
			writer, err := archive.NewWriter(cbzPath, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(writer.WriteNext(successPage(0, models.FormatJPEG))).To(Succeed())
			Expect(writer.Close()).To(Succeed())

			reader, err := zip.OpenReader(cbzPath)
			Expect(err).NotTo(HaveOccurred())
			defer reader.Close()
			Expect(reader.File[0].Method).To(Equal(zip.Store))
		})
	})

	Context("failed pages", func() {
		It("should skip them, leaving a gap in entry names", func() {
			writer, err := archive.NewWriter(cbzPath, 5)
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 5; i++ {
				page := successPage(i, models.FormatJPEG)
				if i == 2 {
					page = failedPage(2)
				}
				Expect(writer.WriteNext(page)).To(Succeed())
			}
			Expect(writer.Close()).To(Succeed())

			Expect(entryNames(cbzPath)).To(Equal([]string{"0000.jpg", "0001.jpg", "0003.jpg", "0004.jpg"}))
			Expect(writer.EntryCount()).To(Equal(4))
		})
	})

	Context("ordering violations", func() {
		It("should reject an index that skips ahead", func() {
			writer, err := archive.NewWriter(cbzPath, 5)
			Expect(err).NotTo(HaveOccurred())
			defer writer.Abort()

			Expect(writer.WriteNext(successPage(0, models.FormatJPEG))).To(Succeed())
			err = writer.WriteNext(successPage(2, models.FormatJPEG))
			Expect(err).To(MatchError(archive.ErrOrderingViolation))
		})

		It("should reject a repeated index", func() {
			writer, err := archive.NewWriter(cbzPath, 5)
			Expect(err).NotTo(HaveOccurred())
			defer writer.Abort()

			Expect(writer.WriteNext(successPage(0, models.FormatJPEG))).To(Succeed())
			Expect(writer.WriteNext(successPage(0, models.FormatJPEG))).To(MatchError(archive.ErrOrderingViolation))
		})
	})

	Context("lifecycle", func() {
		It("should produce a valid empty archive for zero pages", func() {
			writer, err := archive.NewWriter(cbzPath, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(writer.Close()).To(Succeed())

			reader, err := zip.OpenReader(cbzPath)
			Expect(err).NotTo(HaveOccurred())
			defer reader.Close()
			Expect(reader.File).To(BeEmpty())
		})

		It("should remove the partial file on Abort", func() {
			writer, err := archive.NewWriter(cbzPath, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(writer.WriteNext(successPage(0, models.FormatJPEG))).To(Succeed())

			Expect(writer.Abort()).To(Succeed())
			_, err = os.Stat(cbzPath)
			Expect(os.IsNotExist(err)).To(BeTrue())
		})

		It("should tolerate Close after Abort", func() {
			writer, err := archive.NewWriter(cbzPath, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(writer.Abort()).To(Succeed())
			Expect(writer.Close()).To(Succeed())
		})

		It("should fail when the target directory does not exist", func() {
			_, err := archive.NewWriter(filepath.Join(tempDir, "missing", "out.cbz"), 1)
			Expect(err).To(HaveOccurred())
		})
	})
})
