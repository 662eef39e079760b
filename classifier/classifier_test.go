package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeImage struct {
	w, h      float64
	src       string
	class, id string
}

func (f fakeImage) Width() float64         { return f.w }
func (f fakeImage) Height() float64        { return f.h }
func (f fakeImage) Src() string            { return f.src }
func (f fakeImage) ContainerClass() string { return f.class }
func (f fakeImage) ContainerID() string    { return f.id }

func TestIsBanner(t *testing.T) {
	tests := []struct {
		name string
		img  fakeImage
		want bool
	}{
		{"wide aspect", fakeImage{w: 1200, h: 400, src: "/a.jpg"}, true},
		{"wide but narrow", fakeImage{w: 500, h: 100, src: "/a.jpg"}, false},
		{"exactly 2:1", fakeImage{w: 800, h: 400, src: "/a.jpg"}, false},
		{"large width", fakeImage{w: 1001, src: "/a.jpg"}, true},
		{"width 1000", fakeImage{w: 1000, src: "/a.jpg"}, false},
		{"keyword in class", fakeImage{class: "Hero-Wrap"}, true},
		{"keyword in id", fakeImage{id: "main-slider"}, true},
		{"keyword in src", fakeImage{src: "/img/BANNER_1.png"}, true},
		{"unknown geometry", fakeImage{src: "/logo.png"}, false},
		{"zero height", fakeImage{w: 900, h: 0, src: "/x.png"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBanner(tt.img))
		})
	}
}

func TestParseDimension(t *testing.T) {
	assert.Equal(t, 1200.0, ParseDimension("1200"))
	assert.Equal(t, 600.0, ParseDimension(" 600px"))
	assert.Equal(t, 0.0, ParseDimension("auto"))
	assert.Equal(t, 0.0, ParseDimension(""))
	assert.Equal(t, 0.0, ParseDimension("-5"))
}
