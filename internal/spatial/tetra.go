package spatial

// Circumcenter returns the center of the sphere circumscribing the
// tetrahedron (p0,p1,p2,p3). It solves the 3x3 linear system obtained
// by equating |x-p0|^2 to |x-pi|^2 for i=1,2,3.
//
// Degenerate (coplanar or duplicate-vertex) tetrahedra make the system
// singular. Per spec §4.1/§9, the caller must never see a non-finite
// result: Circumcenter falls back to the tetrahedron's centroid in
// that case, which keeps the Voronoi MBR a valid enclosing box (the
// centroid always lies within the convex hull of the four points).
func Circumcenter(p0, p1, p2, p3 Vertex) Vertex {
	a := p1.Sub(p0)
	b := p2.Sub(p0)
	c := p3.Sub(p0)

	// Right-hand side: 0.5 * |pi-p0|^2 for i=1,2,3.
	rhs := [3]float64{
		0.5 * float64(a.Dot(a)),
		0.5 * float64(b.Dot(b)),
		0.5 * float64(c.Dot(c)),
	}

	m := [3][3]float64{
		{float64(a[0]), float64(a[1]), float64(a[2])},
		{float64(b[0]), float64(b[1]), float64(b[2])},
		{float64(c[0]), float64(c[1]), float64(c[2])},
	}

	sol, ok := solve3x3(m, rhs)
	if !ok {
		return centroid(p0, p1, p2, p3)
	}

	center := Vertex{
		p0[0] + float32(sol[0]),
		p0[1] + float32(sol[1]),
		p0[2] + float32(sol[2]),
	}
	return center
}

func centroid(p0, p1, p2, p3 Vertex) Vertex {
	var c Vertex
	for i := 0; i < Dims; i++ {
		c[i] = (p0[i] + p1[i] + p2[i] + p3[i]) / 4
	}
	return c
}

// solve3x3 solves m*x = rhs via Cramer's rule, reporting ok=false when
// the determinant is too close to zero to trust the solution.
func solve3x3(m [3][3]float64, rhs [3]float64) (x [3]float64, ok bool) {
	det := det3(m)
	const eps = 1e-12
	if det > -eps && det < eps {
		return x, false
	}

	for col := 0; col < 3; col++ {
		mc := m
		for row := 0; row < 3; row++ {
			mc[row][col] = rhs[row]
		}
		x[col] = det3(mc) / det
	}
	return x, true
}

func det3(m [3][3]float64) float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}
