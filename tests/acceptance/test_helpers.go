package acceptance

import (
	"bytes"
	"fmt"
	"os"
)

// WriteTestPDF writes a valid PDF with one empty page per entry in
// sizes (width, height in points). Empty pages rasterize to blank
// images, which is enough to exercise the whole conversion pipeline
// against a real document.
func WriteTestPDF(path string, sizes [][2]float64) error {
	objs := []string{"<< /Type /Catalog /Pages 2 0 R >>"}

	kids := ""
	for i := range sizes {
		kids += fmt.Sprintf("%d 0 R ", 3+i)
	}
	objs = append(objs, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, len(sizes)))

	for _, size := range sizes {
		objs = append(objs, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %g %g] >>", size[0], size[1]))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objs)+1)
	for i, obj := range objs {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objs); i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)

	return os.WriteFile(path, buf.Bytes(), 0644)
}

// UniformSizes returns count pages of the same width and height.
func UniformSizes(count int, width, height float64) [][2]float64 {
	sizes := make([][2]float64, count)
	for i := range sizes {
		sizes[i] = [2]float64{width, height}
	}
	return sizes
}
