package pipeline

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"

	ico "github.com/sergeymakinen/go-ico"

	"themegen/internal/imaging"
)

// PackICO renders src at each member size and packs them into one ICO.
func PackICO(scaler imaging.Scaler, src image.Image, members []int) ([]byte, error) {
	images, err := renderMembers(scaler, src, members)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := ico.EncodeAll(&buf, images); err != nil {
		return nil, fmt.Errorf("pack ico: %w", err)
	}
	return buf.Bytes(), nil
}

// icnsTypes maps a pixel size to the ICNS element type carrying a PNG of
// that size.
var icnsTypes = map[int]string{
	16:   "icp4",
	32:   "icp5",
	64:   "icp6",
	128:  "ic07",
	256:  "ic08",
	512:  "ic09",
	1024: "ic10",
}

// ICNSSupports reports whether size has an ICNS element type.
func ICNSSupports(size int) bool {
	_, ok := icnsTypes[size]
	return ok
}

// PackICNS renders src at each member size and packs them as PNG elements of
// an Apple icon container.
func PackICNS(scaler imaging.Scaler, src image.Image, members []int) ([]byte, error) {
	images, err := renderMembers(scaler, src, members)
	if err != nil {
		return nil, err
	}
	var body bytes.Buffer
	for i, img := range images {
		typ, ok := icnsTypes[members[i]]
		if !ok {
			return nil, fmt.Errorf("pack icns: unsupported size %d", members[i])
		}
		data, err := imaging.EncodePNG(img)
		if err != nil {
			return nil, fmt.Errorf("pack icns: %w", err)
		}
		body.WriteString(typ)
		_ = binary.Write(&body, binary.BigEndian, uint32(8+len(data)))
		body.Write(data)
	}

	var out bytes.Buffer
	out.WriteString("icns")
	_ = binary.Write(&out, binary.BigEndian, uint32(8+body.Len()))
	out.Write(body.Bytes())
	return out.Bytes(), nil
}

func renderMembers(scaler imaging.Scaler, src image.Image, members []int) ([]image.Image, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("no members to pack")
	}
	images := make([]image.Image, 0, len(members))
	for _, size := range members {
		scaled := scaler.Resize(src, size, size)
		if scaled == nil {
			return nil, fmt.Errorf("cannot render %dx%d member", size, size)
		}
		images = append(images, scaled)
	}
	return images, nil
}
