package scraper

// scrollToJS scrolls to a fraction of the document height so lazy images
// load.
const scrollToJS = `(fraction) => {
	window.scrollTo(0, document.body.scrollHeight * fraction);
}`

const scrollTopJS = `() => window.scrollTo(0, 0)`

const locationJS = `() => window.location.href`

// nextButtonSelectors are the "next slide" controls of common carousel
// libraries.
var nextButtonSelectors = []string{
	".slick-next",
	".swiper-button-next",
	".carousel-control-next",
	".owl-next",
	`[data-slide="next"]`,
	".next-arrow",
	".arrow-right",
	".slider-next",
	".bx-next",
	".flex-next",
	".glide__arrow--right",
	`button[aria-label="Next"]`,
	`button[aria-label="next"]`,
	".splide__arrow--next",
	".flickity-prev-next-button.next",
}

// carouselClicks is how many times each next control is pressed.
const carouselClicks = 10

// cycleCarouselsJS presses every next control so each slide gets a chance
// to load. It resolves with the number of controls found.
const cycleCarouselsJS = `async (selectors, clicks) => {
	const sleep = (ms) => new Promise((r) => setTimeout(r, ms));
	let found = 0;
	for (const sel of selectors) {
		let buttons;
		try {
			buttons = document.querySelectorAll(sel);
		} catch (e) {
			continue;
		}
		for (const btn of buttons) {
			found++;
			for (let i = 0; i < clicks; i++) {
				try { btn.click(); } catch (e) { break; }
				await sleep(400 + Math.random() * 400);
			}
		}
	}
	return found;
}`

// collectImagesJS measures every <img> and every element with a CSS
// background image. Keys match classifier.RenderedImage.
const collectImagesJS = `() => {
	const out = [];
	const cls = (el) => (el && typeof el.className === 'string') ? el.className : '';
	const isVisible = (el, rect) => {
		const style = window.getComputedStyle(el);
		return rect.width > 0 && rect.height > 0 &&
			style.display !== 'none' && style.visibility !== 'hidden' &&
			parseFloat(style.opacity || '1') > 0;
	};

	for (const img of document.querySelectorAll('img')) {
		let src = img.currentSrc || img.src ||
			img.getAttribute('data-src') ||
			img.getAttribute('data-lazy-src') ||
			img.getAttribute('data-original') || '';
		if (!src && img.srcset) {
			src = img.srcset.split(',')[0].trim().split(' ')[0];
		}
		if (!src) continue;

		const parents = [];
		let parentId = '';
		let p = img.parentElement;
		for (let depth = 0; p && depth < 3; depth++, p = p.parentElement) {
			parents.push(cls(p));
			if (!parentId && p.id) parentId = p.id;
		}

		const rect = img.getBoundingClientRect();
		out.push({
			src: src,
			alt: img.alt || '',
			width: img.naturalWidth || rect.width || 0,
			height: img.naturalHeight || rect.height || 0,
			class: cls(img),
			parentClass: parents.join(' ').trim(),
			parentId: parentId,
			visible: isVisible(img, rect),
			background: false,
		});
	}

	for (const el of document.querySelectorAll('*')) {
		const bg = window.getComputedStyle(el).backgroundImage;
		if (!bg || bg === 'none' || bg.includes('gradient')) continue;
		const m = bg.match(/url\(["']?([^"')]+)["']?\)/);
		if (!m || m[1].startsWith('data:')) continue;

		const rect = el.getBoundingClientRect();
		out.push({
			src: m[1],
			alt: '',
			width: rect.width,
			height: rect.height,
			class: cls(el),
			parentClass: cls(el),
			parentId: el.id || '',
			visible: isVisible(el, rect),
			background: true,
		});
	}
	return out;
}`
