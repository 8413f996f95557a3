// Package quantize builds a 256-color palette from RGB pixel data using
// Anthony Dekker's NeuQuant neural-net quantizer, and maps image.Image
// frames to indices into that palette. It is entirely independent of
// gifenc: the core encoder only ever consumes pixels a caller has already
// quantized, and never imports this package.
package quantize

/*
NeuQuant Neural-Net Quantization Algorithm
------------------------------------------

Copyright (c) 1994 Anthony Dekker

NEUQUANT Neural-Net quantization algorithm by Anthony Dekker, 1994.
See "Kohonen neural networks for optimal colour quantization"
in "Network: Computation in Neural Systems" Vol. 5 (1994) pp 351-367.

Any party obtaining a copy of these files from the author, directly or
indirectly, is granted, free of charge, a full and unrestricted irrevocable,
world-wide, paid up, royalty-free, nonexclusive right and license to deal
in this software and documentation files (the "Software"), including without
limitation the rights to use, copy, modify, merge, publish, distribute, sublicense,
and/or sell copies of the Software, and to permit persons who receive
copies from any such party to do so, with the only requirement being
that this copyright notice remain intact.
*/

const (
	ncycles         = 100
	netsize         = 256
	maxnetpos       = netsize - 1
	netbiasshift    = 4
	intbiasshift    = 16
	intbias         = 1 << intbiasshift
	gammashift      = 10
	gamma           = 1 << gammashift
	betashift       = 10
	beta            = intbias >> betashift
	betagamma       = intbias << (gammashift - betashift)
	initrad         = netsize >> 3
	radiusbiasshift = 6
	radiusbias      = 1 << radiusbiasshift
	initradius      = initrad * radiusbias
	radiusdec       = 30
	alphabiasshift  = 10
	initalpha       = 1 << alphabiasshift
	radbiasshift    = 8
	radbias         = 1 << radbiasshift
	alpharadbshift  = alphabiasshift + radbiasshift
	alpharadbias    = 1 << alpharadbshift
	prime1          = 499
	prime2          = 491
	prime3          = 487
	prime4          = 503
	minpicturebytes = 3 * prime4
)

// Palette is a trained, searchable 256-color table.
type Palette struct {
	network  [][]int32 // [netsize][4]: b,g,r,original-index
	netindex [256]int32
	rgb      [netsize * 3]byte
}

// RGB returns the palette as flattened RGB triples, suitable for use as
// an Encoder's global or local color table.
func (p Palette) RGB() []byte {
	return append([]byte(nil), p.rgb[:]...)
}

// Index returns the palette entry closest to (r,g,b).
func (p *Palette) Index(r, g, b byte) int {
	return p.search(int32(r), int32(g), int32(b))
}

// neuQuant holds the learning state used only while Build is training;
// Palette (the public result) keeps none of it.
type neuQuant struct {
	network   [][]int32
	netindex  []int32
	bias      []int32
	freq      []int32
	radpower  []int32
	pixels    []byte
	samplefac int
}

// Build trains a 256-color palette from a flattened RGB buffer. sample is
// the sampling factor (1..30); lower values train on more of the input
// and produce a better but slower fit.
func Build(pixels []byte, sample int) Palette {
	if sample < 1 {
		sample = 1
	}
	nq := &neuQuant{
		network:   make([][]int32, netsize),
		netindex:  make([]int32, 256),
		bias:      make([]int32, netsize),
		freq:      make([]int32, netsize),
		radpower:  make([]int32, initrad),
		pixels:    pixels,
		samplefac: sample,
	}
	nq.init()
	nq.learn()
	nq.unbiasnet()
	nq.inxbuild()

	var pal Palette
	pal.network = nq.network
	copy(pal.netindex[:], nq.netindex)

	index := make([]int, netsize)
	for i := 0; i < netsize; i++ {
		index[nq.network[i][3]] = i
	}
	k := 0
	for i := 0; i < netsize; i++ {
		j := index[i]
		pal.rgb[k] = byte(nq.network[j][0])
		pal.rgb[k+1] = byte(nq.network[j][1])
		pal.rgb[k+2] = byte(nq.network[j][2])
		k += 3
	}
	return pal
}

func (nq *neuQuant) init() {
	for i := 0; i < netsize; i++ {
		v := int32((i << (netbiasshift + 8)) / netsize)
		nq.network[i] = []int32{v, v, v, 0}
		nq.freq[i] = intbias / netsize
		nq.bias[i] = 0
	}
}

func (nq *neuQuant) altersingle(alpha, i int32, b, g, r int32) {
	nq.network[i][0] -= (alpha * (nq.network[i][0] - b)) / initalpha
	nq.network[i][1] -= (alpha * (nq.network[i][1] - g)) / initalpha
	nq.network[i][2] -= (alpha * (nq.network[i][2] - r)) / initalpha
}

func (nq *neuQuant) alterneigh(radius int, i int, b, g, r int32) {
	lo := absInt(i - radius)
	hi := i + radius
	if hi > netsize {
		hi = netsize
	}

	j, k, m := i+1, i-1, 1
	for j < hi || k > lo {
		a := nq.radpower[m]
		m++
		if j < hi {
			p := nq.network[j]
			p[0] -= (a * (p[0] - b)) / alpharadbias
			p[1] -= (a * (p[1] - g)) / alpharadbias
			p[2] -= (a * (p[2] - r)) / alpharadbias
			j++
		}
		if k > lo {
			p := nq.network[k]
			p[0] -= (a * (p[0] - b)) / alpharadbias
			p[1] -= (a * (p[1] - g)) / alpharadbias
			p[2] -= (a * (p[2] - r)) / alpharadbias
			k--
		}
	}
}

func (nq *neuQuant) contest(b, g, r int32) int {
	bestd := int32(0x7FFFFFFF)
	bestbiasd := bestd
	bestpos := -1
	bestbiaspos := bestpos

	for i := 0; i < netsize; i++ {
		n := nq.network[i]
		dist := absInt32(n[0]-b) + absInt32(n[1]-g) + absInt32(n[2]-r)
		if dist < bestd {
			bestd = dist
			bestpos = i
		}
		biasdist := dist - (nq.bias[i] >> (intbiasshift - netbiasshift))
		if biasdist < bestbiasd {
			bestbiasd = biasdist
			bestbiaspos = i
		}
		betafreq := nq.freq[i] >> betashift
		nq.freq[i] -= betafreq
		nq.bias[i] += betafreq << gammashift
	}
	nq.freq[bestpos] += beta
	nq.bias[bestpos] -= betagamma
	return bestbiaspos
}

func (nq *neuQuant) learn() {
	lengthcount := len(nq.pixels)
	alphadec := int32(30 + ((nq.samplefac - 1) / 3))
	samplepixels := lengthcount / (3 * nq.samplefac)
	if samplepixels == 0 {
		samplepixels = 1
	}
	delta := samplepixels / ncycles
	if delta == 0 {
		delta = 1
	}

	alpha := int32(initalpha)
	radius := int32(initradius)
	rad := int(radius >> radiusbiasshift)
	if rad <= 1 {
		rad = 0
	}
	for i := 0; i < rad; i++ {
		nq.radpower[i] = alpha * ((int32(rad*rad-i*i) * radbias) / int32(rad*rad))
	}

	var step int
	switch {
	case lengthcount < minpicturebytes:
		nq.samplefac = 1
		step = 3
	case lengthcount%prime1 != 0:
		step = 3 * prime1
	case lengthcount%prime2 != 0:
		step = 3 * prime2
	case lengthcount%prime3 != 0:
		step = 3 * prime3
	default:
		step = 3 * prime4
	}

	pix, i := 0, 0
	for i < samplepixels && lengthcount >= 3 {
		b := (int32(nq.pixels[pix]) & 0xff) << netbiasshift
		g := (int32(nq.pixels[pix+1]) & 0xff) << netbiasshift
		r := (int32(nq.pixels[pix+2]) & 0xff) << netbiasshift

		j := nq.contest(b, g, r)
		nq.altersingle(alpha, int32(j), b, g, r)
		if rad != 0 {
			nq.alterneigh(rad, j, b, g, r)
		}

		pix += step
		if pix >= lengthcount {
			pix -= lengthcount
		}
		i++

		if i%delta == 0 {
			alpha -= alpha / alphadec
			radius -= radius / radiusdec
			rad = int(radius >> radiusbiasshift)
			if rad <= 1 {
				rad = 0
			}
			for j := 0; j < rad; j++ {
				nq.radpower[j] = alpha * ((int32(rad*rad-j*j) * radbias) / int32(rad*rad))
			}
		}
	}
}

func (nq *neuQuant) unbiasnet() {
	for i := 0; i < netsize; i++ {
		nq.network[i][0] >>= netbiasshift
		nq.network[i][1] >>= netbiasshift
		nq.network[i][2] >>= netbiasshift
		nq.network[i][3] = int32(i)
	}
}

func (nq *neuQuant) inxbuild() {
	previouscol := int32(0)
	startpos := 0
	for i := 0; i < netsize; i++ {
		p := nq.network[i]
		smallpos := i
		smallval := p[1]
		for j := i + 1; j < netsize; j++ {
			q := nq.network[j]
			if q[1] < smallval {
				smallpos = j
				smallval = q[1]
			}
		}
		if i != smallpos {
			nq.network[i], nq.network[smallpos] = nq.network[smallpos], nq.network[i]
		}
		if smallval != previouscol {
			nq.netindex[previouscol] = int32((startpos + i) >> 1)
			for j := previouscol + 1; j < smallval; j++ {
				nq.netindex[j] = int32(i)
			}
			previouscol = smallval
			startpos = i
		}
	}
	nq.netindex[previouscol] = int32((startpos + maxnetpos) >> 1)
	for j := previouscol + 1; j < 256; j++ {
		nq.netindex[j] = maxnetpos
	}
}

// search mirrors the trained neuQuant's inxsearch against a finished Palette.
func (p *Palette) search(b, g, r int32) int {
	bestd := int32(1000)
	best := -1

	i := int(p.netindex[g])
	j := i - 1

	for i < netsize || j >= 0 {
		if i < netsize {
			n := p.network[i]
			dist := n[1] - g
			if dist >= bestd {
				i = netsize
			} else {
				i++
				dist = absInt32(dist)
				dist += absInt32(n[0] - b)
				if dist < bestd {
					dist += absInt32(n[2] - r)
					if dist < bestd {
						bestd = dist
						best = int(n[3])
					}
				}
			}
		}
		if j >= 0 {
			n := p.network[j]
			dist := g - n[1]
			if dist >= bestd {
				j = -1
			} else {
				j--
				dist = absInt32(dist)
				dist += absInt32(n[0] - b)
				if dist < bestd {
					dist += absInt32(n[2] - r)
					if dist < bestd {
						bestd = dist
						best = int(n[3])
					}
				}
			}
		}
	}
	return best
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func absInt32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}
