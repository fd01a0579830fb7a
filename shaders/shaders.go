// Package shaders holds the GLSL sources for the triangle. The renderer reads
// the compiled vert.spv and frag.spv from this directory at startup, relative
// to the working directory. They are build outputs and are not checked in;
// produce them with
//
//	go generate ./shaders
//
// which needs glslc (shipped with the Vulkan SDK and shaderc) on the PATH.
package shaders

//go:generate glslc shader.vert -o vert.spv
//go:generate glslc shader.frag -o frag.spv
