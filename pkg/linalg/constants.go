package linalg

// Epsilon is the shared near-zero threshold used by every singularity and
// division guard in the numeric layer. Keep it as the single source of truth;
// do not duplicate the literal elsewhere.
const Epsilon = 1e-15
