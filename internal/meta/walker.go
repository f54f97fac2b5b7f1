package meta

import (
	"strconv"

	"github.com/Arcadia-Science/readlif/internal/types"
)

// Walk discovers every image declared in the metadata tree, depth-first in
// document order, and returns one descriptor per image. The order matches
// the order of the memory blocks produced by the scanner.
func Walk(root *Node) []types.ImageDescriptor {
	var list []types.ImageDescriptor
	walkElement(root, "", &list)
	return list
}

func walkElement(node *Node, path string, list *[]types.ImageDescriptor) {
	children := node.FindAll("Children", "Element")
	if len(children) == 0 {
		// The document root holds its elements directly, without the
		// Children wrapper.
		children = node.ChildrenNamed("Element")
	}

	for _, child := range children {
		name, _ := child.Attr("Name")
		appended := name
		if path != "" {
			appended = path + "/" + name
		}

		if len(child.FindAll("Children", "Element")) > 0 {
			walkElement(child, appended, list)
			continue
		}

		if dims := child.Find("Data", "Image", "ImageDescription", "Dimensions"); dims != nil {
			*list = append(*list, buildDescriptor(child, dims, path, name))
		}
	}
}

// buildDescriptor assembles the typed descriptor for one leaf image
// element. Missing axes default to element count 1 with no scale; that
// policy lives in types.DimensionSpec, not here.
func buildDescriptor(elem, dims *Node, path, name string) types.ImageDescriptor {
	desc := types.ImageDescriptor{
		Path: path + "/",
		Name: name,
	}

	var declared []int
	for _, dd := range dims.ChildrenNamed("DimensionDescription") {
		idText, ok := dd.Attr("DimID")
		if !ok {
			continue
		}
		id, err := strconv.Atoi(idText)
		if err != nil || id < 1 || id > types.MaxDimID {
			continue
		}
		declared = append(declared, id)

		count := 1
		if text, ok := dd.Attr("NumberOfElements"); ok {
			if n, err := strconv.Atoi(text); err == nil {
				count = n
			}
		}
		desc.Dims.SetCount(id, count)

		if scale, ok := dimensionScale(id, count, dd); ok {
			desc.Dims.SetScale(id, scale)
		}
	}

	// Display axes are the first two declared dimensions in document
	// order. The (x, y) fallback for degenerate declarations has never
	// been exercised by a real file.
	if len(declared) >= 2 {
		desc.DisplayDims = [2]int{declared[0], declared[1]}
	} else {
		desc.DisplayDims = [2]int{types.DimX, types.DimY}
	}

	channels := elem.FindAll("Data", "Image", "ImageDescription", "Channels", "ChannelDescription")
	desc.Channels = len(channels)
	for _, ch := range channels {
		depth := 8
		if text, ok := ch.Attr("Resolution"); ok {
			if d, err := strconv.Atoi(text); err == nil {
				depth = d
			}
		}
		desc.BitDepth = append(desc.BitDepth, depth)
	}

	if desc.Dims.Count(types.DimMosaic) > 1 {
		for _, tile := range elem.FindAll("Data", "Image", "Attachment", "Tile") {
			desc.MosaicTiles = append(desc.MosaicTiles, parseTile(tile))
		}
	}

	for _, att := range elem.FindAll("Data", "Image", "Attachment") {
		if s := att.Find("ATLConfocalSettingDefinition"); s != nil {
			desc.Settings = s.AttrMap()
			break
		}
	}
	if desc.Settings == nil {
		desc.Settings = map[string]string{}
	}

	return desc
}

// dimensionScale derives the physical scale for one axis from its declared
// Length attribute. Spatial axes report px/µm from a length in meters; the
// time axis (id 4) reports frames/sec from a length already in seconds. A
// missing, unparsable, or zero length yields no scale.
func dimensionScale(id, count int, dd *Node) (float64, bool) {
	text, ok := dd.Attr("Length")
	if !ok {
		return 0, false
	}
	length, err := strconv.ParseFloat(text, 64)
	if err != nil || length == 0 {
		return 0, false
	}
	if id == types.DimT {
		return float64(count) / length, true
	}
	return float64(count-1) / (length * 1e6), true
}

func parseTile(tile *Node) types.MosaicTile {
	var t types.MosaicTile
	if text, ok := tile.Attr("FieldX"); ok {
		t.FieldX, _ = strconv.Atoi(text)
	}
	if text, ok := tile.Attr("FieldY"); ok {
		t.FieldY, _ = strconv.Atoi(text)
	}
	if text, ok := tile.Attr("PosX"); ok {
		t.PosX, _ = strconv.ParseFloat(text, 64)
	}
	if text, ok := tile.Attr("PosY"); ok {
		t.PosY, _ = strconv.ParseFloat(text, 64)
	}
	return t
}
