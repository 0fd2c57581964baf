// Package scattio provides machinery for generating measurement
// trajectories for scattering instruments.
//
// The engine is in package 'traj', expression interpreters are in
// 'interpreters', persistence is in 'record', forwarding to
// instrument control is in 'sio', and the command-line tool is
// 'cmd/trajtool'.
package scattio
