package profile_test

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/dayflow/internal/profile"
)

func encodePNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	Expect(png.Encode(&buf, img)).To(Succeed())
	return buf.Bytes()
}

// withDimensions rewrites the IHDR chunk of a PNG so that it claims w x h
// pixels without carrying the pixel data.
func withDimensions(raw []byte, w, h uint32) []byte {
	out := append([]byte(nil), raw...)
	Expect(string(out[12:16])).To(Equal("IHDR"))
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func encodeJPEG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	Expect(jpeg.Encode(&buf, img, nil)).To(Succeed())
	return buf.Bytes()
}

var _ = Describe("NormalizeAvatar", func() {
	DescribeTable("producing a square PNG",
		func(raw []byte) {
			out, err := profile.NormalizeAvatar(raw)
			Expect(err).NotTo(HaveOccurred())

			img, format, err := image.Decode(bytes.NewReader(out))
			Expect(err).NotTo(HaveOccurred())
			Expect(format).To(Equal("png"))
			Expect(img.Bounds().Dx()).To(Equal(profile.AvatarSize))
			Expect(img.Bounds().Dy()).To(Equal(profile.AvatarSize))
		},
		Entry("from a wide PNG", encodePNG(300, 120)),
		Entry("from a tall JPEG", encodeJPEG(64, 200)),
		Entry("from a tiny PNG", encodePNG(1, 1)),
	)

	It("should reject other formats", func() {
		_, err := profile.NormalizeAvatar([]byte("GIF89a not really"))
		Expect(err).To(HaveOccurred())
	})

	It("should reject a truncated image", func() {
		raw := encodePNG(50, 50)
		_, err := profile.NormalizeAvatar(raw[:40])
		Expect(err).To(HaveOccurred())
	})

	It("should refuse huge dimensions before decoding the pixels", func() {
		raw := withDimensions(encodePNG(8, 8), 12000, 12000)
		cfg, err := png.DecodeConfig(bytes.NewReader(raw))
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Width).To(Equal(12000))

		_, err = profile.NormalizeAvatar(raw)
		Expect(err).To(MatchError("image dimensions too large"))
	})

	It("should accept a long strip within the pixel budget", func() {
		raw := encodePNG(4096, 1)
		_, err := profile.NormalizeAvatar(raw)
		Expect(err).NotTo(HaveOccurred())
	})
})
