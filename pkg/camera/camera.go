package camera

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// ErrInvalidConfig is wrapped by every error New returns
var ErrInvalidConfig = errors.New("invalid camera configuration")

// WorldUp is the up axis used to derive the camera basis
var WorldUp = core.NewVec3(0, 0, 1)

// Config contains camera configuration parameters
type Config struct {
	Position    core.Vec3 // Eye position
	Forward     core.Vec3 // Viewing direction, need not be unit length
	Width       int       // Image width in pixels
	Height      int       // Image height in pixels
	FieldOfView float64   // Vertical field of view in degrees, in (0, 180)
	NearClip    float64   // Distance from the eye to the projection plane
}

// DefaultConfig returns a camera at the origin looking down +X
func DefaultConfig() Config {
	return Config{
		Position:    core.NewVec3(0, 0, 0),
		Forward:     core.NewVec3(1, 0, 0),
		Width:       700,
		Height:      400,
		FieldOfView: 90,
		NearClip:    0.1,
	}
}

// Validate reports the first problem with the configuration, if any
func (c Config) Validate() error {
	switch {
	case c.Width <= 0:
		return fmt.Errorf("%w: width must be positive, got %d", ErrInvalidConfig, c.Width)
	case c.Height <= 0:
		return fmt.Errorf("%w: height must be positive, got %d", ErrInvalidConfig, c.Height)
	case !(c.NearClip > 0):
		return fmt.Errorf("%w: near clip must be positive, got %g", ErrInvalidConfig, c.NearClip)
	case !(c.FieldOfView > 0 && c.FieldOfView < 180):
		return fmt.Errorf("%w: field of view must be in (0, 180) degrees, got %g", ErrInvalidConfig, c.FieldOfView)
	case c.Forward.IsZero():
		return fmt.Errorf("%w: forward direction is zero", ErrInvalidConfig)
	case c.Forward.Normalize().Cross(WorldUp).LengthSquared() < 1e-12:
		return fmt.Errorf("%w: forward direction %v is parallel to world up", ErrInvalidConfig, c.Forward)
	}
	return nil
}

// Camera maps pixel coordinates to world-space rays through a projection
// plane at the near clip distance. Its state is fixed after construction.
type Camera struct {
	config   Config
	position core.Vec3
	forward  core.Vec3
	up       core.Vec3
	right    core.Vec3

	// Projection plane extent and its bottom-left corner in camera space
	// (x along forward, y along right, z along up)
	planeWidth      float64
	planeHeight     float64
	bottomLeftLocal core.Vec3
}

// New creates a camera, failing if the configuration would produce undefined geometry
func New(config Config) (*Camera, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	forward := config.Forward.Normalize()
	right := WorldUp.Cross(forward).Normalize()
	up := forward.Cross(right)

	planeHeight := config.NearClip * math.Tan(config.FieldOfView*0.5*math.Pi/180) * 2
	planeWidth := planeHeight * float64(config.Width) / float64(config.Height)

	return &Camera{
		config:          config,
		position:        config.Position,
		forward:         forward,
		up:              up,
		right:           right,
		planeWidth:      planeWidth,
		planeHeight:     planeHeight,
		bottomLeftLocal: core.NewVec3(config.NearClip, -planeWidth/2, -planeHeight/2),
	}, nil
}

// Config returns the configuration the camera was built from
func (c *Camera) Config() Config {
	return c.config
}

// Basis returns the camera's forward, up and right unit vectors
func (c *Camera) Basis() (forward, up, right core.Vec3) {
	return c.forward, c.up, c.right
}

// PlaneSize returns the width and height of the projection plane
func (c *Camera) PlaneSize() (width, height float64) {
	return c.planeWidth, c.planeHeight
}

// Width returns the image width in pixels
func (c *Camera) Width() int { return c.config.Width }

// Height returns the image height in pixels
func (c *Camera) Height() int { return c.config.Height }

// RayDirection returns the unit direction through pixel (x, y), where y counts
// up from the bottom row. Edge pixels land exactly on the plane's corners.
func (c *Camera) RayDirection(x, y int) core.Vec3 {
	tx := planeCoordinate(x, c.config.Width)
	ty := planeCoordinate(y, c.config.Height)

	local := c.bottomLeftLocal.Add(core.NewVec3(0, c.planeWidth*tx, c.planeHeight*ty))
	dir := c.right.Multiply(local.Y).
		Add(c.up.Multiply(local.Z)).
		Add(c.forward.Multiply(local.X))

	return dir.Normalize()
}

// GetRay returns the primary ray through pixel (x, y)
func (c *Camera) GetRay(x, y int) core.Ray {
	return core.NewRay(c.position, c.RayDirection(x, y))
}

// planeCoordinate maps a pixel index to [0, 1]. A single-pixel axis maps to the centre.
func planeCoordinate(i, size int) float64 {
	if size <= 1 {
		return 0.5
	}
	return float64(i) / float64(size-1)
}
