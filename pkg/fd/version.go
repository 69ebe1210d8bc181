package fd

// Version is the current version of the gofd propagation kernel.
const Version = "0.1.0"
