package world

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pthm-cable/simcore/components"
)

// ResourceTag is an optional per-cell decoration in the decoded world that
// seeds VegetationGrid and decorative entities. The persisted-world format
// itself is produced by an external map generator; these are the tags it is
// documented to carry.
type ResourceTag string

const (
	ResourceNone    ResourceTag = ""
	ResourceTree    ResourceTag = "tree"
	ResourceRock    ResourceTag = "rock"
	ResourceBush    ResourceTag = "bush"
	ResourceBerries ResourceTag = "berries"
)

// decodedChunk mirrors the persisted-world chunk shape: a coordinate plus
// two parallel 16x16 byte-coded arrays (terrain, height), plus a parallel
// array of optional per-cell resource tags.
type decodedChunk struct {
	CX        int32                                        `json:"cx"`
	CY        int32                                         `json:"cy"`
	Terrain   [components.ChunkSize * components.ChunkSize]uint8 `json:"terrain"`
	Heights   [components.ChunkSize * components.ChunkSize]uint8 `json:"heights"`
	Resources [components.ChunkSize * components.ChunkSize]string `json:"resources,omitempty"`
}

// decodedWorld is the on-disk boundary shape: a map name and its chunks.
// The actual persisted-world file format (RON-like) is produced by an
// external map generator; decode.go only has to agree on a decoded JSON
// shape with it, which is why a JSON boundary loader is sufficient here.
type decodedWorld struct {
	Name   string         `json:"name"`
	Chunks []decodedChunk `json:"chunks"`
}

// LoadResult is the product of decoding a world file: the immutable World
// plus the resource tags found, keyed by tile, for the vegetation and
// decorative-entity seeding steps that happen at startup.
type LoadResult struct {
	World     *World
	Resources map[components.IVec2]ResourceTag
}

// LoadFile reads and decodes a world file from disk. Load-time failures
// here (missing file, malformed JSON) are fatal and are propagated as
// wrapped errors for main to map to a nonzero exit code.
func LoadFile(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading world file: %w", err)
	}
	var dw decodedWorld
	if err := json.Unmarshal(data, &dw); err != nil {
		return nil, fmt.Errorf("parsing world file: %w", err)
	}
	return decode(&dw)
}

func decode(dw *decodedWorld) (*LoadResult, error) {
	w := New(dw.Name)
	resources := make(map[components.IVec2]ResourceTag)

	for _, dc := range dw.Chunks {
		coord := components.IVec2{X: dc.CX, Y: dc.CY}
		chunk := &components.Chunk{Coord: coord}
		for i := 0; i < components.ChunkSize*components.ChunkSize; i++ {
			kind := components.TerrainKind(dc.Terrain[i])
			chunk.Tiles[i] = components.Tile{
				Kind:     kind,
				Walkable: kind.Walkable(),
				Height:   dc.Heights[i],
			}
			if dc.Resources[i] != "" {
				lx, ly := int32(i%components.ChunkSize), int32(i/components.ChunkSize)
				tile := components.IVec2{X: coord.X*components.ChunkSize + lx, Y: coord.Y*components.ChunkSize + ly}
				resources[tile] = ResourceTag(dc.Resources[i])
			}
		}
		w.AddChunk(chunk)
	}

	return &LoadResult{World: w, Resources: resources}, nil
}

// GenerateFlat builds a synthetic world of (2*radiusChunks+1) x
// (2*radiusChunks+1) all-grass chunks centered on the origin, for tests and for running
// without a `--world` file. Not part of the map-generator boundary: a
// trivial deterministic stand-in so the core can run standalone.
func GenerateFlat(radiusChunks int) *World {
	w := New("flat")
	for cy := -radiusChunks; cy <= radiusChunks; cy++ {
		for cx := -radiusChunks; cx <= radiusChunks; cx++ {
			coord := components.IVec2{X: int32(cx), Y: int32(cy)}
			chunk := &components.Chunk{Coord: coord}
			for i := range chunk.Tiles {
				chunk.Tiles[i] = components.Tile{Kind: components.TerrainGrass, Walkable: true, Height: 8}
			}
			w.AddChunk(chunk)
		}
	}
	return w
}
