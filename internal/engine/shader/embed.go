package shader

import _ "embed"

// MeshVertexShader is the vertex shader for model rendering.
// Attribute locations match the gpu package slots (0 position, 1 texcoord, 2 normal).
//
//go:embed mesh.vert
var MeshVertexShader string

// MeshFragmentShader is the fragment shader for model rendering.
//
//go:embed mesh.frag
var MeshFragmentShader string
