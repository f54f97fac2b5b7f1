package meta

import (
	"math"
	"testing"

	"github.com/Arcadia-Science/readlif/internal/types"
)

const xyztHeader = `<LMSDataContainerHeader Version="2">
  <Element Name="xyzt_test.lif">
    <Children>
      <Element Name="Series001">
        <Data>
          <Image>
            <ImageDescription>
              <Dimensions>
                <DimensionDescription DimID="1" NumberOfElements="1024" Length="1.0363781e-04"/>
                <DimensionDescription DimID="2" NumberOfElements="1024" Length="1.0363781e-04"/>
                <DimensionDescription DimID="3" NumberOfElements="3" Length="9.8901e-06"/>
                <DimensionDescription DimID="4" NumberOfElements="3" Length="1.5"/>
              </Dimensions>
              <Channels>
                <ChannelDescription Resolution="8"/>
                <ChannelDescription Resolution="8"/>
              </Channels>
            </ImageDescription>
            <Attachment Name="HardwareSetting">
              <ATLConfocalSettingDefinition ObjectiveNumber="11506353" Magnification="63"/>
            </Attachment>
          </Image>
        </Data>
      </Element>
    </Children>
  </Element>
</LMSDataContainerHeader>`

func walkHeader(t *testing.T, header string) []types.ImageDescriptor {
	t.Helper()
	root, err := ParseHeader(header)
	if err != nil {
		t.Fatalf("parse header: %v", err)
	}
	return Walk(root)
}

func TestWalk_XYZT(t *testing.T) {
	descs := walkHeader(t, xyztHeader)
	if len(descs) != 1 {
		t.Fatalf("expected 1 descriptor, got %d", len(descs))
	}
	d := descs[0]

	if d.Name != "Series001" {
		t.Errorf("expected name Series001, got %q", d.Name)
	}
	if d.Path != "xyzt_test.lif/" {
		t.Errorf("expected path xyzt_test.lif/, got %q", d.Path)
	}

	if d.NX() != 1024 || d.NY() != 1024 || d.NZ() != 3 || d.NT() != 3 || d.NMosaic() != 1 {
		t.Errorf("unexpected dims: x=%d y=%d z=%d t=%d m=%d", d.NX(), d.NY(), d.NZ(), d.NT(), d.NMosaic())
	}

	// Every axis is at least 1, even the ones the header never declared.
	for id := 1; id <= types.MaxDimID; id++ {
		if d.Dims.Count(id) < 1 {
			t.Errorf("axis %d has count %d", id, d.Dims.Count(id))
		}
	}

	if d.DisplayDims != [2]int{1, 2} {
		t.Errorf("expected display dims (1, 2), got %v", d.DisplayDims)
	}
	if d.Channels != 2 {
		t.Errorf("expected 2 channels, got %d", d.Channels)
	}
	if len(d.BitDepth) != 2 || d.BitDepth[0] != 8 || d.BitDepth[1] != 8 {
		t.Errorf("unexpected bit depths: %v", d.BitDepth)
	}
	if d.Settings["ObjectiveNumber"] != "11506353" {
		t.Errorf("unexpected settings: %v", d.Settings)
	}
}

func TestWalk_Scales(t *testing.T) {
	d := walkHeader(t, xyztHeader)[0]

	// Spatial axes: (count-1) px over the declared length in µm.
	sx, ok := d.Dims.Scale(types.DimX)
	if !ok {
		t.Fatal("x scale missing")
	}
	if math.Abs(sx-9.8709) > 1e-4 {
		t.Errorf("expected x scale ~9.8709 px/µm, got %v", sx)
	}

	// Time axis: declared length is already in seconds.
	st, ok := d.Dims.Scale(types.DimT)
	if !ok {
		t.Fatal("t scale missing")
	}
	if math.Abs(st-2.0) > 1e-9 {
		t.Errorf("expected t scale 2.0 frames/sec, got %v", st)
	}

	// Undeclared axis has no scale.
	if _, ok := d.Dims.Scale(types.DimMosaic); ok {
		t.Error("mosaic axis should have no scale")
	}
}

func TestWalk_ZeroLengthYieldsNoScale(t *testing.T) {
	header := `<LMSDataContainerHeader>
  <Element Name="f">
    <Children>
      <Element Name="img">
        <Data><Image><ImageDescription>
          <Dimensions>
            <DimensionDescription DimID="1" NumberOfElements="16" Length="0"/>
            <DimensionDescription DimID="2" NumberOfElements="16"/>
          </Dimensions>
        </ImageDescription></Image></Data>
      </Element>
    </Children>
  </Element>
</LMSDataContainerHeader>`
	d := walkHeader(t, header)[0]

	if _, ok := d.Dims.Scale(types.DimX); ok {
		t.Error("zero length must not produce a scale")
	}
	if _, ok := d.Dims.Scale(types.DimY); ok {
		t.Error("absent length must not produce a scale")
	}
	if d.NX() != 16 || d.NY() != 16 {
		t.Errorf("counts should still parse: x=%d y=%d", d.NX(), d.NY())
	}
}

func TestWalk_NestedFolders(t *testing.T) {
	header := `<LMSDataContainerHeader>
  <Element Name="proj.lif">
    <Children>
      <Element Name="FolderA">
        <Children>
          <Element Name="Series001">
            <Data><Image><ImageDescription>
              <Dimensions>
                <DimensionDescription DimID="1" NumberOfElements="4"/>
                <DimensionDescription DimID="2" NumberOfElements="4"/>
              </Dimensions>
            </ImageDescription></Image></Data>
          </Element>
          <Element Name="Series002">
            <Data><Image><ImageDescription>
              <Dimensions>
                <DimensionDescription DimID="1" NumberOfElements="8"/>
                <DimensionDescription DimID="2" NumberOfElements="8"/>
              </Dimensions>
            </ImageDescription></Image></Data>
          </Element>
        </Children>
      </Element>
    </Children>
  </Element>
</LMSDataContainerHeader>`
	descs := walkHeader(t, header)

	if len(descs) != 2 {
		t.Fatalf("expected 2 descriptors, got %d", len(descs))
	}
	if descs[0].Path != "proj.lif/FolderA/" || descs[1].Path != "proj.lif/FolderA/" {
		t.Errorf("unexpected paths: %q, %q", descs[0].Path, descs[1].Path)
	}
	if descs[0].Name != "Series001" || descs[1].Name != "Series002" {
		t.Errorf("unexpected order: %q, %q", descs[0].Name, descs[1].Name)
	}
	if descs[0].NX() != 4 || descs[1].NX() != 8 {
		t.Errorf("descriptors out of order: x=%d, x=%d", descs[0].NX(), descs[1].NX())
	}
}

func TestWalk_XZDisplayDims(t *testing.T) {
	header := `<LMSDataContainerHeader>
  <Element Name="f">
    <Children>
      <Element Name="xz">
        <Data><Image><ImageDescription>
          <Dimensions>
            <DimensionDescription DimID="1" NumberOfElements="32"/>
            <DimensionDescription DimID="3" NumberOfElements="16"/>
            <DimensionDescription DimID="4" NumberOfElements="9"/>
          </Dimensions>
          <Channels>
            <ChannelDescription Resolution="8"/>
            <ChannelDescription Resolution="8"/>
          </Channels>
        </ImageDescription></Image></Data>
      </Element>
    </Children>
  </Element>
</LMSDataContainerHeader>`
	d := walkHeader(t, header)[0]

	if d.DisplayDims != [2]int{1, 3} {
		t.Errorf("expected display dims (1, 3), got %v", d.DisplayDims)
	}
	if d.NY() != 1 {
		t.Errorf("undeclared y axis should report 1, got %d", d.NY())
	}
}

// A declaration with fewer than two dimensions falls back to (x, y)
// display axes. No real acquisition produces such a file, so this covers
// behavior that is untested by construction against actual data.
func TestWalk_DisplayDimsFallback(t *testing.T) {
	header := `<LMSDataContainerHeader>
  <Element Name="f">
    <Children>
      <Element Name="line">
        <Data><Image><ImageDescription>
          <Dimensions>
            <DimensionDescription DimID="1" NumberOfElements="64"/>
          </Dimensions>
        </ImageDescription></Image></Data>
      </Element>
    </Children>
  </Element>
</LMSDataContainerHeader>`
	d := walkHeader(t, header)[0]

	if d.DisplayDims != [2]int{1, 2} {
		t.Errorf("expected fallback display dims (1, 2), got %v", d.DisplayDims)
	}
}

func TestWalk_MosaicTiles(t *testing.T) {
	header := `<LMSDataContainerHeader>
  <Element Name="f">
    <Children>
      <Element Name="tiled">
        <Data><Image>
          <ImageDescription>
            <Dimensions>
              <DimensionDescription DimID="1" NumberOfElements="4"/>
              <DimensionDescription DimID="2" NumberOfElements="4"/>
              <DimensionDescription DimID="10" NumberOfElements="2"/>
            </Dimensions>
            <Channels><ChannelDescription Resolution="8"/></Channels>
          </ImageDescription>
          <Attachment Name="TileScanInfo">
            <Tile FieldX="0" FieldY="0" PosX="0.0125" PosY="0.025"/>
            <Tile FieldX="1" FieldY="0" PosX="0.0135" PosY="0.025"/>
          </Attachment>
        </Image></Data>
      </Element>
    </Children>
  </Element>
</LMSDataContainerHeader>`
	d := walkHeader(t, header)[0]

	if d.NMosaic() != 2 {
		t.Fatalf("expected 2 mosaic positions, got %d", d.NMosaic())
	}
	if len(d.MosaicTiles) != 2 {
		t.Fatalf("expected 2 tiles, got %d", len(d.MosaicTiles))
	}
	if d.MosaicTiles[1].FieldX != 1 {
		t.Errorf("expected tile 1 FieldX=1, got %d", d.MosaicTiles[1].FieldX)
	}
	if d.MosaicTiles[0].PosY != 0.025 {
		t.Errorf("expected tile 0 PosY=0.025, got %v", d.MosaicTiles[0].PosY)
	}
}

func TestWalk_SingleTileImageHasNoTiles(t *testing.T) {
	d := walkHeader(t, xyztHeader)[0]
	if len(d.MosaicTiles) != 0 {
		t.Errorf("single-tile image should carry no tile list, got %d", len(d.MosaicTiles))
	}
}

func TestWalk_FolderWithoutImagesIgnored(t *testing.T) {
	header := `<LMSDataContainerHeader>
  <Element Name="f">
    <Children>
      <Element Name="notes"/>
    </Children>
  </Element>
</LMSDataContainerHeader>`
	if descs := walkHeader(t, header); len(descs) != 0 {
		t.Errorf("expected no descriptors, got %d", len(descs))
	}
}
