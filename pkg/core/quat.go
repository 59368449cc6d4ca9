package core

import "math"

// Quat is a rotation quaternion with vector part (X, Y, Z) and scalar part W
type Quat struct {
	X, Y, Z, W float64
}

// IdentityQuat returns the quaternion representing no rotation
func IdentityQuat() Quat {
	return Quat{W: 1}
}

// QuatFromAxisAngle returns the rotation of angle radians around axis
// (right-hand rule). The axis does not need to be normalized.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	axis = axis.Normalize()
	s := math.Sin(angle / 2)
	return Quat{X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s, W: math.Cos(angle / 2)}
}

// QuatFromEuler builds a rotation from Euler angles in radians applied in
// X, then Y, then Z order.
func QuatFromEuler(euler Vec3) Quat {
	qx := QuatFromAxisAngle(NewVec3(1, 0, 0), euler.X)
	qy := QuatFromAxisAngle(NewVec3(0, 1, 0), euler.Y)
	qz := QuatFromAxisAngle(NewVec3(0, 0, 1), euler.Z)
	return qz.Multiply(qy).Multiply(qx)
}

// Multiply returns q * other, which applies other first and then q
func (q Quat) Multiply(other Quat) Quat {
	return Quat{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

// Normalize returns q scaled to unit length. The zero quaternion becomes the identity.
func (q Quat) Normalize() Quat {
	l := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if l == 0 {
		return IdentityQuat()
	}
	return Quat{q.X / l, q.Y / l, q.Z / l, q.W / l}
}

// Conjugate returns the inverse rotation of a unit quaternion
func (q Quat) Conjugate() Quat {
	return Quat{-q.X, -q.Y, -q.Z, q.W}
}

// Rotate applies the rotation to v
func (q Quat) Rotate(v Vec3) Vec3 {
	u := NewVec3(q.X, q.Y, q.Z)
	// v' = v + 2w(u x v) + 2u x (u x v)
	t := u.Cross(v).Multiply(2)
	return v.Add(t.Multiply(q.W)).Add(u.Cross(t))
}
