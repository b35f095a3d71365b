// Package sim provides the geometry shared by simulated devices.
package sim

// Pos2D is a position in mm.
type Pos2D struct {
	X, Y float64
}

// Pose2D is a position with a heading.
type Pose2D struct {
	Pos2D
	Orientation Angle
}

// Angle is in radians, normalized to [-π, π].
type Angle float64

// OffsetBy moves p in-place.
func (p *Pos2D) OffsetBy(d Pos2D) *Pos2D {
	p.X += d.X
	p.Y += d.Y
	return p
}

// Advance moves the pose forward by dist along its orientation and then
// turns it by deg degrees, counter-clockwise positive.
func (p Pose2D) Advance(dist, deg float64) Pose2D {
	p.Pos2D.OffsetBy(p.Orientation.Project(dist))
	p.Orientation = p.Orientation.AddDegrees(deg)
	return p
}
