package spectral

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// fft2D performs a 2D Fast Fourier Transform on real input data.
// Rows are transformed with Gonum's real FFT and completed through conjugate
// symmetry, then every column is transformed with Gonum's complex FFT.
//
// Parameters:
//   - data: Input grid as a 1D array (row-major order)
//   - size: Width/height of the square grid
//
// Returns:
//   - The unshifted 2D FFT of the input as a row-major slice
func fft2D(data []float64, size int) []complex128 {
	// FFT plans hold scratch space and are not safe for concurrent use,
	// so each call owns its own pair
	rowFFT := fourier.NewFFT(size)
	colFFT := fourier.NewCmplxFFT(size)

	result := make([]complex128, size*size)

	rowOutput := make([]complex128, size/2+1) // Gonum FFT output size for real input

	// Perform row-wise FFT
	for i := 0; i < size; i++ {
		row := data[i*size : (i+1)*size]
		rowFFT.Coefficients(rowOutput, row)

		full := result[i*size : (i+1)*size]
		copy(full, rowOutput)
		for j := len(rowOutput); j < size; j++ {
			// Use conjugate symmetry: F(n-k) = F*(k)
			k := size - j
			full[j] = complex(real(rowOutput[k]), -imag(rowOutput[k]))
		}
	}

	colInput := make([]complex128, size)
	colOutput := make([]complex128, size)

	// Column-wise FFT over the complex row spectra
	for j := 0; j < size; j++ {
		for i := 0; i < size; i++ {
			colInput[i] = result[i*size+j]
		}

		colFFT.Coefficients(colOutput, colInput)

		for i := 0; i < size; i++ {
			result[i*size+j] = colOutput[i]
		}
	}

	return result
}

// shift moves the zero-frequency element of a row-major size×size grid to
// (size/2, size/2), like numpy's fftshift
func shift(values []float64, size int) []float64 {
	out := make([]float64, len(values))
	h := size / 2
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			out[((i+h)%size)*size+(j+h)%size] = values[i*size+j]
		}
	}
	return out
}

// unshift is the inverse of shift
func unshift(values []float64, size int) []float64 {
	out := make([]float64, len(values))
	h := size / 2
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			out[i*size+j] = values[((i+h)%size)*size+(j+h)%size]
		}
	}
	return out
}
