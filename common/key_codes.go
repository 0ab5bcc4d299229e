package common

// Key codes understood by the window backends. Values match GLFW key codes.
const (
	KeyR   = 82  // R key (ASCII)
	KeyEsc = 256 // Escape key (GLFW)
)
