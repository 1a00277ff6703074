package cache_test

import (
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lissto-dev/catalogger/pkg/cache"
)

type outcome struct {
	ref string
	ok  bool
}

var _ = Describe("MemoryCache", func() {
	var c *cache.MemoryCache[*outcome]

	BeforeEach(func() {
		c = cache.NewMemoryCache[*outcome]()
	})

	It("should compute a value only once per key", func() {
		calls := 0
		compute := func() *outcome {
			calls++
			return &outcome{ref: "img:v1.0.0", ok: true}
		}

		first := c.GetOrCompute("img:v1.0.0", compute)
		second := c.GetOrCompute("img:v1.0.0", compute)

		Expect(calls).To(Equal(1))
		Expect(second).To(BeIdenticalTo(first))
	})

	It("should cache failed outcomes too", func() {
		calls := 0
		compute := func() *outcome {
			calls++
			return &outcome{ref: "img:v9.9.9", ok: false}
		}

		c.GetOrCompute("img:v9.9.9", compute)
		got := c.GetOrCompute("img:v9.9.9", compute)

		Expect(calls).To(Equal(1))
		Expect(got.ok).To(BeFalse())
	})

	It("should report missing keys", func() {
		_, ok := c.Get("nope")
		Expect(ok).To(BeFalse())
		Expect(c.Len()).To(Equal(0))
	})

	It("should return values in first-computed order", func() {
		for _, ref := range []string{"b", "a", "c", "a"} {
			ref := ref
			c.GetOrCompute(ref, func() *outcome { return &outcome{ref: ref} })
		}

		refs := []string{}
		for _, v := range c.Values() {
			refs = append(refs, v.ref)
		}
		Expect(refs).To(Equal([]string{"b", "a", "c"}))
		Expect(c.Len()).To(Equal(3))
	})

	It("should compute once under concurrent access to the same key", func() {
		var calls int32
		var wg sync.WaitGroup

		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer GinkgoRecover()
				got := c.GetOrCompute("shared", func() *outcome {
					atomic.AddInt32(&calls, 1)
					time.Sleep(20 * time.Millisecond)
					return &outcome{ref: "shared", ok: true}
				})
				Expect(got.ref).To(Equal("shared"))
			}()
		}
		wg.Wait()

		Expect(atomic.LoadInt32(&calls)).To(Equal(int32(1)))
	})

	It("should not serialize computations of different keys", func() {
		release := make(chan struct{})
		started := make(chan struct{})

		go func() {
			defer GinkgoRecover()
			c.GetOrCompute("slow", func() *outcome {
				close(started)
				<-release
				return &outcome{ref: "slow"}
			})
		}()

		<-started
		done := make(chan struct{})
		go func() {
			defer GinkgoRecover()
			c.GetOrCompute("fast", func() *outcome { return &outcome{ref: "fast"} })
			close(done)
		}()

		Eventually(done).Should(BeClosed())
		close(release)
		Eventually(func() int { return c.Len() }).Should(Equal(2))
	})
})
