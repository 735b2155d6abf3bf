package operator

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Dense realization is meant for small conformance instances only.
const maxDenseQubits = 12

// apply maps a basis state through one Pauli label. It returns the image
// basis index and the complex phase picked up on the way.
func apply(label string, basis, qubits int) (int, complex128) {
	out := basis
	phase := complex(1, 0)
	for i, r := range label {
		bit := basis >> (qubits - 1 - i) & 1
		switch r {
		case 'I':
		case 'X':
			out ^= 1 << (qubits - 1 - i)
		case 'Y':
			out ^= 1 << (qubits - 1 - i)
			if bit == 0 {
				phase *= complex(0, 1)
			} else {
				phase *= complex(0, -1)
			}
		case 'Z':
			if bit == 1 {
				phase = -phase
			}
		}
	}
	return out, phase
}

// Dense builds the real and imaginary parts of the 2^n x 2^n matrix of the
// sum. For a Hermitian sum the real part is symmetric and the imaginary part
// antisymmetric.
func (s *Sum) Dense() (re, im *mat.Dense, err error) {
	if s.qubits > maxDenseQubits {
		return nil, nil, fmt.Errorf("dense realization of %d qubits exceeds the %d qubit limit",
			s.qubits, maxDenseQubits)
	}
	dim := 1 << s.qubits
	re = mat.NewDense(dim, dim, nil)
	im = mat.NewDense(dim, dim, nil)
	for _, t := range s.terms {
		for j := 0; j < dim; j++ {
			k, phase := apply(t.Pauli, j, s.qubits)
			re.Set(k, j, re.At(k, j)+t.Coeff*real(phase))
			im.Set(k, j, im.At(k, j)+t.Coeff*imag(phase))
		}
	}
	return re, im, nil
}

// HasImaginaryPart reports whether any term carries an odd number of Y
// factors, the only way a real-weighted sum grows an imaginary matrix part.
func (s *Sum) HasImaginaryPart() bool {
	for _, t := range s.terms {
		ys := 0
		for _, r := range t.Pauli {
			if r == 'Y' {
				ys++
			}
		}
		if ys%2 == 1 {
			return true
		}
	}
	return false
}

// RealEmbedding realizes the Hermitian matrix H = A + iB as the real
// symmetric matrix [[A, -B], [B, A]] of twice the dimension. Its spectrum is
// that of H with every eigenvalue doubled in multiplicity.
func (s *Sum) RealEmbedding() (*mat.SymDense, error) {
	re, im, err := s.Dense()
	if err != nil {
		return nil, err
	}
	dim := 1 << s.qubits
	emb := mat.NewSymDense(2*dim, nil)
	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			emb.SetSym(i, j, re.At(i, j))
			emb.SetSym(dim+i, dim+j, re.At(i, j))
		}
		for j := 0; j < dim; j++ {
			emb.SetSym(i, dim+j, -im.At(i, j))
		}
	}
	return emb, nil
}

// RealSymmetric returns the plain symmetric realization, valid only when the
// sum has no imaginary matrix part.
func (s *Sum) RealSymmetric() (*mat.SymDense, error) {
	if s.HasImaginaryPart() {
		return nil, fmt.Errorf("sum has an imaginary matrix part; use RealEmbedding")
	}
	re, _, err := s.Dense()
	if err != nil {
		return nil, err
	}
	dim := 1 << s.qubits
	sym := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			sym.SetSym(i, j, re.At(i, j))
		}
	}
	return sym, nil
}
