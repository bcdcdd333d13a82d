package engine

import (
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// GLFW/OpenGL calls must all originate from the same OS thread.
	runtime.LockOSThread()
}

const (
	blitVertexShaderSource = `
#version 410 core
layout (location = 0) in vec2 aPos;
layout (location = 1) in vec2 aUV;
out vec2 TexCoord;
void main() {
    gl_Position = vec4(aPos, 0.0, 1.0);
    TexCoord = aUV;
}
` + "\x00"

	blitFragmentShaderSource = `
#version 410 core
in vec2 TexCoord;
out vec4 FragColor;
uniform sampler2D frame;
void main() {
    FragColor = texture(frame, TexCoord);
}
` + "\x00"
)

// Presenter is a blit-only GLFW window: it never executes any part of
// the ray tracer on the GPU, it only uploads the CPU-traced Framebuffer
// as a texture and draws it across a full-screen quad every frame.
type Presenter struct {
	window      *glfw.Window
	program     uint32
	vao, vbo    uint32
	texture     uint32
	width, height int
}

// NewPresenter creates and initializes a width x height GLFW/OpenGL
// window. Call Close when done.
func NewPresenter(width, height int, title string) (*Presenter, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %v", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	window, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %v", err)
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %v", err)
	}

	p := &Presenter{window: window, width: width, height: height}
	if err := p.compileProgram(); err != nil {
		return nil, err
	}
	p.createQuad()
	p.createTexture()

	gl.Viewport(0, 0, int32(width), int32(height))
	return p, nil
}

func (p *Presenter) compileProgram() error {
	vs, err := compileBlitShader(blitVertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return fmt.Errorf("vertex shader: %v", err)
	}
	defer gl.DeleteShader(vs)

	fs, err := compileBlitShader(blitFragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return fmt.Errorf("fragment shader: %v", err)
	}
	defer gl.DeleteShader(fs)

	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := make([]byte, logLength+1)
		gl.GetProgramInfoLog(program, logLength, nil, &log[0])
		return fmt.Errorf("link failed: %s", string(log))
	}
	p.program = program
	return nil
}

func compileBlitShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := make([]byte, logLength+1)
		gl.GetShaderInfoLog(shader, logLength, nil, &log[0])
		return 0, fmt.Errorf("%s", string(log))
	}
	return shader, nil
}

// createQuad uploads a static full-screen triangle strip (pos.xy, uv)
// that never changes between frames; only the texture contents do.
func (p *Presenter) createQuad() {
	vertices := []float32{
		// pos.x, pos.y, u, v
		-1, -1, 0, 1,
		1, -1, 1, 1,
		-1, 1, 0, 0,
		1, 1, 1, 0,
	}

	gl.GenVertexArrays(1, &p.vao)
	gl.BindVertexArray(p.vao)

	gl.GenBuffers(1, &p.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, p.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 4*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, 4*4, gl.PtrOffset(2*4))
	gl.EnableVertexAttribArray(1)
}

func (p *Presenter) createTexture() {
	gl.GenTextures(1, &p.texture)
	gl.BindTexture(gl.TEXTURE_2D, p.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
}

// Present uploads fb as a texture and draws it across the full window,
// then swaps buffers and polls events.
func (p *Presenter) Present(fb *Framebuffer) {
	rgb := make([]byte, fb.Width*fb.Height*3)
	for i, c := range fb.Pixels {
		rgb[i*3+0] = c.R
		rgb[i*3+1] = c.G
		rgb[i*3+2] = c.B
	}

	gl.BindTexture(gl.TEXTURE_2D, p.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGB, int32(fb.Width), int32(fb.Height), 0, gl.RGB, gl.UNSIGNED_BYTE, gl.Ptr(rgb))

	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.UseProgram(p.program)
	gl.BindVertexArray(p.vao)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)

	p.window.SwapBuffers()
	glfw.PollEvents()
}

// Window exposes the underlying GLFW window, e.g. to attach an input manager.
func (p *Presenter) Window() *glfw.Window { return p.window }

// ShouldClose reports whether the user requested the window be closed.
func (p *Presenter) ShouldClose() bool { return p.window.ShouldClose() }

// Close tears down the window and terminates GLFW.
func (p *Presenter) Close() {
	gl.DeleteTextures(1, &p.texture)
	gl.DeleteBuffers(1, &p.vbo)
	gl.DeleteVertexArrays(1, &p.vao)
	gl.DeleteProgram(p.program)
	p.window.Destroy()
	glfw.Terminate()
}
