package engine

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Framebuffer is a flat RGB pixel grid, one Color per pixel, owned
// exclusively by the renderer between BeginFrame and EndFrame.
type Framebuffer struct {
	Width, Height int
	Pixels        []Color
}

func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{Width: width, Height: height, Pixels: make([]Color, width*height)}
}

func (fb *Framebuffer) At(x, y int) Color   { return fb.Pixels[y*fb.Width+x] }
func (fb *Framebuffer) Set(x, y int, c Color) { fb.Pixels[y*fb.Width+x] = c }

// Renderer drives the primary-ray loop over a scene, distributing rows
// across a worker pool with a shared atomic cursor so fast workers pick
// up more rows than slow ones instead of each owning a fixed static
// slice of the frame.
type Renderer struct {
	Width, Height int
	Workers       int
	Stats         *StatsCollector
	HeatMap       HeatMapMode

	fb       *Framebuffer
	rowCursor int64
}

// NewRenderer creates a renderer targeting width x height, running
// workers goroutines per frame (0 or negative defaults to 1).
func NewRenderer(width, height, workers int) *Renderer {
	if workers < 1 {
		workers = 1
	}
	return &Renderer{
		Width: width, Height: height, Workers: workers,
		Stats: NewStatsCollector(64),
		fb:    NewFramebuffer(width, height),
	}
}

// Framebuffer returns the most recently rendered frame.
func (r *Renderer) Framebuffer() *Framebuffer { return r.fb }

// RenderFrame renders one frame of scene as seen by cam into r's
// framebuffer. Rows are claimed one at a time from a shared atomic
// cursor by Workers goroutines running under an errgroup, so the
// fastest goroutine finishes the most rows instead of idling once its
// static share is done.
func (r *Renderer) RenderFrame(ctx context.Context, scene *Scene, cam *Camera) error {
	r.Stats.BeginFrame(scene.Accel)
	atomic.StoreInt64(&r.rowCursor, 0)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < r.Workers; w++ {
		g.Go(func() error {
			return r.renderRows(gctx, scene, cam)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	r.Stats.EndFrame()
	return nil
}

func (r *Renderer) renderRows(ctx context.Context, scene *Scene, cam *Camera) error {
	var local FrameStats
	defer func() { r.Stats.Merge(local) }()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		y := int(atomic.AddInt64(&r.rowCursor, 1)) - 1
		if y >= r.Height {
			return nil
		}
		r.renderRow(scene, cam, y, &local)
	}
}

// renderRow shades one scanline, folding every ray's counters into
// local (this worker's own accumulator) rather than the shared
// collector, which is only touched once per worker per frame.
func (r *Renderer) renderRow(scene *Scene, cam *Camera, y int, local *FrameStats) {
	for x := 0; x < r.Width; x++ {
		ray := cam.GenerateRay(x, y, r.Width, r.Height)
		var stats RayStats
		hit := scene.FindNearest(&ray, &stats)
		local.add(stats)

		var c Color
		if r.HeatMap != HeatMapOff {
			c = r.Stats.HeatColor(stats, r.HeatMap)
		} else {
			c = r.shade(scene, &ray, hit)
		}
		r.fb.Set(x, y, c)
	}
}

// shade computes direct lighting at the ray's hit point against one
// randomly sampled point on a randomly sampled light quad; a shadow ray
// toward that point determines visibility. Misses return black.
func (r *Renderer) shade(scene *Scene, ray *Ray, hit Intersection) Color {
	if hit.ObjIdx < 0 || hit.T >= hitSentinel {
		return ColorBlack
	}

	p := ray.GetPoint(hit.T)
	wo := ray.Direction.Negate()
	n := scene.GetNormal(hit.ObjIdx, hit, wo)
	albedo := scene.GetAlbedo(hit.ObjIdx)

	seed := int64(hit.ObjIdx)*2654435761 + int64(hit.TriIndex)*40503 + int64(p.X*977+p.Y*911+p.Z*853)
	lightIdx := scene.GetRandomLight(seed)
	lp := scene.RandomPointOnLightQuad(lightIdx, seed^0x5bd1e995)

	toLight := lp.Sub(p)
	dist := toLight.Length()
	if dist < 1e-6 {
		return ColorBlack
	}
	wi := toLight.Scale(1.0 / dist)

	ndotl := n.Dot(wi)
	if ndotl <= 0 {
		return ColorBlack
	}

	shadowRay := NewRay(p.Add(n.Scale(1e-3)), wi)
	shadowRay.Hit.T = dist - 2e-3
	var shadowStats RayStats
	shadowHit := scene.FindNearest(&shadowRay, &shadowStats)
	if shadowHit.T < dist-2e-3 {
		return ColorBlack
	}

	lightN := scene.GetLightQuad(lightIdx).Normal
	cosLight := -lightN.Dot(wi)
	if cosLight <= 0 {
		return ColorBlack
	}

	area := scene.GetLightArea()
	lightColor := scene.GetLightColor()
	falloff := (ndotl * cosLight * area) / (dist * dist)

	rr := clamp(albedo.X*lightColor.X*falloff, 0, 1)
	gg := clamp(albedo.Y*lightColor.Y*falloff, 0, 1)
	bb := clamp(albedo.Z*lightColor.Z*falloff, 0, 1)
	return Color{R: uint8(rr * 255), G: uint8(gg * 255), B: uint8(bb * 255)}
}
