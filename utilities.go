package readlif

import (
	"fmt"
	"io"
	"os"

	"github.com/Arcadia-Science/readlif/internal/binary"
	"github.com/Arcadia-Science/readlif/internal/meta"
	"github.com/Arcadia-Science/readlif/internal/scan"
)

// XMLNode is an alias to the parsed metadata tree node, exposed for
// debugging and for queries the descriptor model does not cover.
type XMLNode = meta.Node

// GetXML returns the parsed XML root and the raw header text of a LIF
// container without scanning its memory blocks.
//
// This is useful for debugging: the header carries far more acquisition
// detail than the descriptors expose.
func GetXML(path string) (*XMLNode, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, "", fmt.Errorf("stat file: %w", err)
	}

	return GetXMLReader(f, stat.Size(), path)
}

// GetXMLReader is GetXML over an already-open byte source.
func GetXMLReader(r io.ReaderAt, size int64, name string) (*XMLNode, string, error) {
	sr := binary.NewSafeReader(r, size, name)
	header, err := scan.ReadHeader(sr)
	if err != nil {
		return nil, "", err
	}
	root, err := meta.ParseHeader(header)
	if err != nil {
		return nil, "", &FormatError{Path: name, Reason: err.Error()}
	}
	return root, header, nil
}

// GetImageXML returns the chunk of header XML corresponding to a named
// image within a LIF container. When several elements share the name, the
// last one in document order wins.
func GetImageXML(path, imageName string) (*XMLNode, error) {
	root, _, err := GetXML(path)
	if err != nil {
		return nil, err
	}

	var match *XMLNode
	for _, elem := range root.Descendants("Element") {
		if name, ok := elem.Attr("Name"); ok && name == imageName {
			match = elem
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%q not found in xml header", imageName)
	}
	return match, nil
}

// GetLaserData extracts the laser settings recorded for a named image
// acquisition: the attributes of every LaserValues element in the image's
// XML chunk, in document order.
func GetLaserData(path, imageName string) ([]map[string]string, error) {
	elem, err := GetImageXML(path, imageName)
	if err != nil {
		return nil, err
	}

	var lasers []map[string]string
	for _, values := range elem.Descendants("LaserValues") {
		lasers = append(lasers, values.AttrMap())
	}
	return lasers, nil
}
