package scene

import (
	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"github.com/soypat/atlasmesh/render"
	"gonum.org/v1/gonum/spatial/r3"
)

// PreviewOptions configures RenderPNG. Positions are given in the bi-unit
// cube the visible scene is fitted into.
type PreviewOptions struct {
	Width, Height int
	// Supersample renders at a multiple of the output size before
	// downsampling for antialiasing.
	Supersample int
	Eye, Center r3.Vec
	Up          r3.Vec
	// Fovy is the vertical field of view in degrees.
	Fovy      float64
	Near, Far float64
	// Background and Color are hex colours. Color is used for objects
	// without material.
	Background string
	Color      string
}

// DefaultPreviewOptions looks at the origin from (3, 3, 3) with Z up.
func DefaultPreviewOptions() PreviewOptions {
	return PreviewOptions{
		Width:       1024,
		Height:      768,
		Supersample: 2,
		Eye:         r3.Vec{X: 3, Y: 3, Z: 3},
		Up:          r3.Vec{Z: 1},
		Fovy:        30,
		Near:        1,
		Far:         10,
		Background:  "#FFF8E3",
		Color:       "#468966",
	}
}

// RenderPNG draws every visible object with its modifiers evaluated and saves
// the image as a PNG file.
func (s *Scene) RenderPNG(path string, opts PreviewOptions) error {
	type drawable struct {
		mesh  *fauxgl.Mesh
		color fauxgl.Color
	}
	var (
		draws []drawable
		all   = fauxgl.NewEmptyMesh()
	)
	for _, o := range s.objects {
		if o.Hidden || o.IsEmpty() {
			continue
		}
		m, err := o.Evaluated()
		if err != nil {
			return err
		}
		fm := toFaux(m, o.Location)
		if o.Smooth() {
			fm.SmoothNormals()
		}
		color := fauxgl.HexColor(opts.Color)
		if n := len(o.Materials); n > 0 {
			mat := o.Materials[n-1]
			color = fauxgl.Color{R: mat.Diffuse[0], G: mat.Diffuse[1], B: mat.Diffuse[2], A: 1}
			if o.ShowTransparent && mat.Transparent {
				color.A = mat.Alpha
			}
		}
		draws = append(draws, drawable{mesh: fm, color: color})
		all.Add(fm)
	}
	if len(draws) == 0 {
		return errors.New("no visible objects to render")
	}
	ss := max(opts.Supersample, 1)
	// all shares triangles with draws, so fitting it fits every mesh in a
	// bi-unit cube centered at the origin.
	all.BiUnitCube()
	context := fauxgl.NewContext(opts.Width*ss, opts.Height*ss)
	context.ClearColorBufferWith(fauxgl.HexColor(opts.Background))
	var (
		eye    = fauxgl.V(opts.Eye.X, opts.Eye.Y, opts.Eye.Z)
		center = fauxgl.V(opts.Center.X, opts.Center.Y, opts.Center.Z)
		up     = fauxgl.V(opts.Up.X, opts.Up.Y, opts.Up.Z)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
		aspect = float64(opts.Width) / float64(opts.Height)
	)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(opts.Fovy, aspect, opts.Near, opts.Far)
	for _, d := range draws {
		shader := fauxgl.NewPhongShader(matrix, light, eye)
		shader.ObjectColor = d.color
		context.Shader = shader
		context.DrawMesh(d.mesh)
	}
	image := context.Image()
	if ss > 1 {
		image = resize.Resize(uint(opts.Width), uint(opts.Height), image, resize.Bilinear)
	}
	return fauxgl.SavePNG(path, image)
}

func toFaux(m *render.Mesh, offset r3.Vec) *fauxgl.Mesh {
	v := func(p r3.Vec) fauxgl.Vector {
		p = r3.Add(p, offset)
		return fauxgl.V(p.X, p.Y, p.Z)
	}
	tris := make([]*fauxgl.Triangle, len(m.Faces))
	for i := range m.Faces {
		t := m.Triangle(i)
		tris[i] = fauxgl.NewTriangleForPoints(v(t[0]), v(t[1]), v(t[2]))
	}
	return fauxgl.NewTriangleMesh(tris)
}
